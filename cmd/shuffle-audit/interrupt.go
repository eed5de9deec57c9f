package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/VArrow2001/shuffle-audit/internal/model"
	"github.com/VArrow2001/shuffle-audit/internal/yandex"
)

// console shares the terminal between the stop confirmation and the track
// picker. Each input line goes to whichever of them is asking.
type console struct {
	out   io.Writer
	lines <-chan string
}

// newConsole starts reading lines from in. The reader goroutine lives until
// in reaches EOF: a read from stdin cannot be interrupted, so in a CLI it
// simply ends with the process.
func newConsole(in io.Reader, out io.Writer) *console {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return &console{out: out, lines: lines}
}

// watchInterrupts asks for confirmation on the first interrupt and calls
// stop on "y"/"yes", on a second interrupt or on SIGTERM. It returns when
// ctx is done or after calling stop.
func (c *console) watchInterrupts(ctx context.Context, stop context.CancelFunc, signals <-chan os.Signal) {
	asking := false
	for {
		// Only read input while the question is open.
		var answers <-chan string
		if asking {
			answers = c.lines
		}

		select {
		case <-ctx.Done():
			return

		case sig := <-signals:
			if asking || sig == syscall.SIGTERM {
				fmt.Fprintln(c.out, "\nStopping after the current read...")
				stop()
				return
			}
			asking = true
			fmt.Fprint(c.out, "\nStop sampling? Finished passes are already saved. [y/N] ")

		case answer, ok := <-answers:
			asking = false
			if ok && confirmed(answer) {
				fmt.Fprintln(c.out, "Stopping after the current read...")
				stop()
				return
			}
			fmt.Fprintln(c.out, "Continuing.")
		}
	}
}

// resolver asks on the terminal which of the tracks sharing a title is
// playing. An empty or invalid answer declines, so the sampler falls back to
// the previous track.
func (c *console) resolver(ctx context.Context) yandex.Resolver {
	return func(title, artists string, candidates []model.Track) (model.Track, bool) {
		fmt.Fprintf(c.out, "\n%q by %q matches several tracks:\n", title, artists)
		for i, t := range candidates {
			fmt.Fprintf(c.out, "  %d) %d. %s\n", i+1, t.Number, t)
		}
		fmt.Fprintf(c.out, "Which one is playing? [1-%d, empty to skip] ", len(candidates))

		select {
		case <-ctx.Done():
			return model.Track{}, false
		case line, ok := <-c.lines:
			if !ok {
				return model.Track{}, false
			}
			i, err := strconv.Atoi(strings.TrimSpace(line))
			if err != nil || i < 1 || i > len(candidates) {
				fmt.Fprintln(c.out, "Skipped.")
				return model.Track{}, false
			}
			return candidates[i-1], true
		}
	}
}

func confirmed(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
