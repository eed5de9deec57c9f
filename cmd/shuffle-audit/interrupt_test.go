package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/VArrow2001/shuffle-audit/internal/model"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

// watch runs watchInterrupts in the background and returns its inputs.
func watch(t *testing.T) (ctx context.Context, signals chan os.Signal, answers *io.PipeWriter, out *syncBuffer, done chan struct{}) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	t.Cleanup(stop)

	signals = make(chan os.Signal, 2)
	r, w := io.Pipe()
	t.Cleanup(func() { w.Close() })
	out = &syncBuffer{}
	done = make(chan struct{})

	con := newConsole(r, out)
	go func() {
		defer close(done)
		con.watchInterrupts(ctx, stop, signals)
	}()
	return ctx, signals, w, out, done
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWatchInterrupts_ConfirmYes(t *testing.T) {
	ctx, signals, answers, out, done := watch(t)

	signals <- os.Interrupt
	waitFor(t, func() bool { return strings.Contains(out.String(), "Stop sampling?") })
	if ctx.Err() != nil {
		t.Fatal("first interrupt stopped without confirmation")
	}

	if _, err := io.WriteString(answers, "yes\n"); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	<-done
	if ctx.Err() == nil {
		t.Error("confirmed stop did not cancel")
	}
}

func TestWatchInterrupts_DeclineThenSecondInterrupt(t *testing.T) {
	ctx, signals, answers, out, done := watch(t)

	signals <- os.Interrupt
	waitFor(t, func() bool { return strings.Contains(out.String(), "Stop sampling?") })
	if _, err := io.WriteString(answers, "n\n"); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	waitFor(t, func() bool { return strings.Contains(out.String(), "Continuing.") })
	if ctx.Err() != nil {
		t.Fatal("declined stop cancelled anyway")
	}

	signals <- os.Interrupt
	signals <- os.Interrupt
	<-done
	if ctx.Err() == nil {
		t.Error("second interrupt did not cancel")
	}
}

func TestWatchInterrupts_SIGTERMStopsImmediately(t *testing.T) {
	ctx, signals, _, _, done := watch(t)

	signals <- syscall.SIGTERM
	<-done
	if ctx.Err() == nil {
		t.Error("SIGTERM did not cancel")
	}
}

func TestConsoleResolver(t *testing.T) {
	candidates := []model.Track{
		{Number: 2, Artists: "Mogwai", Title: "Intro"},
		{Number: 3, Artists: "The xx", Title: "Intro"},
	}

	tests := []struct {
		name   string
		input  string
		want   model.Track
		wantOK bool
	}{
		{"picks by index", "2\n", candidates[1], true},
		{"empty skips", "\n", model.Track{}, false},
		{"out of range skips", "3\n", model.Track{}, false},
		{"not a number skips", "xx\n", model.Track{}, false},
		{"end of input declines", "", model.Track{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &syncBuffer{}
			con := newConsole(strings.NewReader(tt.input), out)

			got, ok := con.resolver(context.Background())("Intro", "Nobody", candidates)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("resolver = %+v, %v, want %+v, %v", got, ok, tt.want, tt.wantOK)
			}
			if !strings.Contains(out.String(), "2) 3. The xx - Intro") {
				t.Errorf("candidates not listed:\n%s", out.String())
			}
		})
	}
}

func TestConsoleResolver_SharesInputWithWatcher(t *testing.T) {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	r, w := io.Pipe()
	defer w.Close()
	con := newConsole(r, &syncBuffer{})

	signals := make(chan os.Signal, 1)
	go con.watchInterrupts(ctx, stop, signals)

	type answer struct {
		track model.Track
		ok    bool
	}
	answered := make(chan answer, 1)
	candidates := []model.Track{{Number: 2, Title: "Intro"}, {Number: 3, Title: "Intro"}}
	go func() {
		track, ok := con.resolver(ctx)("Intro", "", candidates)
		answered <- answer{track, ok}
	}()

	// With no stop question open, the line belongs to the picker.
	if _, err := io.WriteString(w, "1\n"); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	got := <-answered
	if !got.ok || got.track.Number != 2 {
		t.Errorf("resolver = %+v, %v, want track 2", got.track, got.ok)
	}
	if ctx.Err() != nil {
		t.Error("picker answer was taken as a stop confirmation")
	}
}

func TestConsoleResolver_DeclinesWhenStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, w := io.Pipe()
	defer w.Close()
	con := newConsole(r, &syncBuffer{})

	if _, ok := con.resolver(ctx)("Intro", "", []model.Track{{Number: 1}}); ok {
		t.Error("resolver picked a track after sampling stopped")
	}
}

func TestConfirmed(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"y", true},
		{" YES ", true},
		{"", false},
		{"n", false},
		{"yep", false},
	}

	for _, tt := range tests {
		if got := confirmed(tt.answer); got != tt.want {
			t.Errorf("confirmed(%q) = %v, want %v", tt.answer, got, tt.want)
		}
	}
}
