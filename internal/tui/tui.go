// Package tui provides a Bubble Tea dashboard for a running shuffle audit.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/VArrow2001/shuffle-audit/internal/config"
	"github.com/VArrow2001/shuffle-audit/internal/model"
	"github.com/VArrow2001/shuffle-audit/internal/sampling"
	"github.com/VArrow2001/shuffle-audit/internal/yandex"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	meanStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxLogs is how many progress lines the dashboard keeps.
const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInitializing State = iota
	StateSampling
	StateConfirmStop
	StatePicking
	StateComplete
	StateStopped
	StateError
)

// Runner is the sampling work the dashboard drives; *sampling.Sampler
// implements it.
type Runner interface {
	Initialize(ctx context.Context) error
	Run(ctx context.Context, target int) error
	Progress() sampling.Progress
}

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   sampling.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings
	logs     []LogEntry
	err      error

	runner   Runner
	target   int
	snapshot sampling.Progress

	// pick is the open track question while in StatePicking.
	pick      *PickMsg
	afterPick State

	// Sampling context
	ctx    context.Context
	cancel context.CancelFunc

	verbose bool

	width  int
	height int
}

// NewModel creates a dashboard showing runner's progress towards target
// stored passes (0 = until stopped). The runner itself is driven by Run.
func NewModel(runner Runner, settings *config.Settings, target int, verbose bool) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:    StateInitializing,
		spinner:  sp,
		progress: prog,
		settings: settings,
		logs:     make([]LogEntry, 0),
		runner:   runner,
		target:   target,
		ctx:      ctx,
		cancel:   cancel,
		verbose:  verbose,
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Message types
type (
	// ProgressMsg carries a sampler progress event.
	ProgressMsg struct {
		Event sampling.ProgressEvent
	}

	// InitDoneMsg is sent when initialization completes.
	InitDoneMsg struct {
		Err error
	}

	// SampleDoneMsg is sent when Run returns.
	SampleDoneMsg struct {
		Err error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}

	// PickMsg asks which of several tracks sharing a title is playing.
	// The answer, an index into Candidates or -1 to skip, goes to reply.
	PickMsg struct {
		Title      string
		Artists    string
		Candidates []model.Track
		reply      chan<- int
	}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		if m.state == StatePicking && msg.String() != "ctrl+c" {
			return m.updatePick(msg), nil
		}
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			switch m.state {
			case StateInitializing, StateSampling:
				m.state = StateConfirmStop
			case StateConfirmStop:
				m.state = StateSampling
			}

		case "y":
			if m.state == StateConfirmStop {
				// Run returns once the current read finishes.
				m.cancel()
				m.logs = appendLog(m.logs, LogEntry{Message: "Stopping after the current read...", Level: sampling.LevelInfo})
				m.state = StateSampling
			}

		case "n":
			if m.state == StateConfirmStop {
				m.state = StateSampling
			}

		case "v":
			m.verbose = !m.verbose

		case "q":
			if m.finished() {
				return m, tea.Quit
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == sampling.LevelVerbose && !m.verbose {
			return m, nil
		}
		m.logs = appendLog(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})

	case PickMsg:
		m.pick = &msg
		m.afterPick = m.state
		m.state = StatePicking

	case InitDoneMsg:
		if msg.Err != nil {
			m.state = stateFor(msg.Err)
			m.err = msg.Err
			return m, nil
		}
		if m.state == StateInitializing {
			m.state = StateSampling
		}
		m.snapshot = m.runner.Progress()
		cmds = append(cmds, m.tickProgress())

	case SampleDoneMsg:
		m.pick = nil
		m.snapshot = m.runner.Progress()
		m.state = stateFor(msg.Err)
		m.err = msg.Err

	case TickMsg:
		if m.finished() {
			return m, nil
		}
		m.snapshot = m.runner.Progress()
		cmds = append(cmds, m.progress.SetPercent(passPercent(m.snapshot)), m.tickProgress())

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// updatePick answers the open PickMsg: 1-9 choose a candidate, esc or s
// skips it.
func (m Model) updatePick(msg tea.KeyMsg) Model {
	choice := -2
	switch key := msg.String(); key {
	case "esc", "s":
		choice = -1
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(m.pick.Candidates) {
				choice = i
			}
		}
	}
	if choice == -2 {
		return m
	}

	m.pick.reply <- choice
	m.pick = nil
	m.state = m.afterPick
	return m
}

func stateFor(err error) State {
	switch {
	case err == nil:
		return StateComplete
	case errors.Is(err, context.Canceled):
		return StateStopped
	default:
		return StateError
	}
}

func (m Model) finished() bool {
	return m.state == StateComplete || m.state == StateStopped || m.state == StateError
}

func appendLog(logs []LogEntry, entry LogEntry) []LogEntry {
	logs = append(logs, entry)
	if len(logs) > maxLogs {
		logs = logs[len(logs)-maxLogs:]
	}
	return logs
}

func passPercent(p sampling.Progress) float64 {
	if p.PassLength == 0 {
		return 0
	}
	return float64(p.Played) / float64(p.PassLength)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🎲 Shuffle Audit"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Sampling the shuffle of " + m.settings.PlaylistsURL))
	b.WriteString("\n\n")

	switch m.state {
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateSampling:
		b.WriteString(m.viewSampling())
	case StateConfirmStop:
		b.WriteString(m.viewSampling())
		b.WriteString("\n")
		b.WriteString(warningStyle.Render("Stop sampling? Finished passes are already saved. (y/n)"))
		b.WriteString("\n")
	case StatePicking:
		b.WriteString(m.viewSampling())
		b.WriteString("\n")
		b.WriteString(m.viewPick())
	case StateComplete, StateStopped:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Logging in and loading the tracklist..."))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewSampling() string {
	var b strings.Builder
	p := m.snapshot

	target := "∞"
	if m.target > 0 {
		target = fmt.Sprint(m.target)
	}
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Passes: %d/%s", p.Passes, target)))
	b.WriteString("\n\n")

	b.WriteString(meanStyle.Render(fmt.Sprintf(
		"First-track mean: %.2f | True mean: %.2f | Difference: %+.2f",
		p.FirstTrackMean,
		p.TrueMean,
		p.FirstTrackMean-p.TrueMean,
	)))
	b.WriteString("\n\n")

	b.WriteString(m.progress.ViewAs(passPercent(p)))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Current pass: %d/%d tracks | Tracklist: %d tracks", p.Played, p.PassLength, p.Tracks)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewPick() string {
	var b strings.Builder

	b.WriteString(warningStyle.Render(fmt.Sprintf("%q by %q matches several tracks. Which one is playing?", m.pick.Title, m.pick.Artists)))
	b.WriteString("\n")
	for i, t := range m.pick.Candidates {
		if i == 9 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  ... %d more", len(m.pick.Candidates)-9)))
			b.WriteString("\n")
			break
		}
		b.WriteString(infoStyle.Render(fmt.Sprintf("  %d) %d. %s", i+1, t.Number, t)))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder
	p := m.snapshot

	heading := "✨ Sampling Complete!"
	if m.state == StateStopped {
		heading = "⏹ Sampling Stopped"
	}

	box := boxStyle.Render(fmt.Sprintf(
		"%s\n\n"+
			"Passes stored: %d\n"+
			"First-track mean: %.2f\n"+
			"True mean: %.2f\n"+
			"Database: %s",
		heading,
		p.Passes,
		p.FirstTrackMean,
		p.TrueMean,
		m.settings.DatabasePath,
	))
	b.WriteString(box)

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case sampling.LevelError:
			style = errorStyle
			prefix = "✗"
		case sampling.LevelWarning:
			style = warningStyle
			prefix = "!"
		case sampling.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case sampling.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInitializing, StateSampling:
		return "esc: stop • v: verbose • ctrl+c: quit now"
	case StateConfirmStop:
		return "y: stop • n/esc: keep sampling"
	case StatePicking:
		return "1-9: pick • s/esc: skip (reuse the previous track)"
	case StateComplete, StateStopped, StateError:
		return "q: quit"
	}
	return ""
}

// drive initializes runner and then samples, reporting each outcome
// through send. It returns once the runner is done with the browser and the
// store.
func drive(ctx context.Context, runner Runner, target int, send func(tea.Msg)) {
	err := runner.Initialize(ctx)
	send(InitDoneMsg{Err: err})
	if err != nil {
		return
	}
	send(SampleDoneMsg{Err: runner.Run(ctx, target)})
}

// picker returns a resolver that asks through send and waits for the
// dashboard's answer. It declines once ctx is done.
func picker(ctx context.Context, send func(tea.Msg)) yandex.Resolver {
	return func(title, artists string, candidates []model.Track) (model.Track, bool) {
		reply := make(chan int, 1)
		send(PickMsg{Title: title, Artists: artists, Candidates: candidates, reply: reply})
		select {
		case i := <-reply:
			if i < 0 || i >= len(candidates) {
				return model.Track{}, false
			}
			return candidates[i], true
		case <-ctx.Done():
			return model.Track{}, false
		}
	}
}

// Options configure Run.
type Options struct {
	// Target is the number of stored passes to stop at, 0 for no limit.
	Target  int
	Verbose bool
	// Resolve asks in the dashboard which track is playing when a title is
	// shared by several rows and the artists do not decide it.
	Resolve bool
}

// Run starts the TUI application and returns once the sampler has stopped.
//
// newRunner builds the sampler; progress events it reports through
// onProgress are shown in the log. resolver is nil unless opts.Resolve is set.
func Run(settings *config.Settings, opts Options, newRunner func(onProgress func(sampling.ProgressEvent), resolver yandex.Resolver) Runner) error {
	var p *tea.Program
	var ready sync.WaitGroup
	ready.Add(1)
	send := func(msg tea.Msg) {
		ready.Wait()
		p.Send(msg)
	}

	m := NewModel(nil, settings, opts.Target, opts.Verbose)
	var resolver yandex.Resolver
	if opts.Resolve {
		resolver = picker(m.ctx, send)
	}
	m.runner = newRunner(func(event sampling.ProgressEvent) {
		send(ProgressMsg{Event: event})
	}, resolver)

	p = tea.NewProgram(m, tea.WithAltScreen())
	ready.Done()

	done := make(chan struct{})
	go func() {
		defer close(done)
		drive(m.ctx, m.runner, opts.Target, send)
	}()

	_, err := p.Run()
	m.cancel()
	// A pass finishing now is still committed before the caller closes the store.
	<-done
	return err
}
