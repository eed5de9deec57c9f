package browser

import (
	"context"
	"fmt"
	"time"
)

// DefaultPollInterval is how often WaitFor re-runs its lookup.
const DefaultPollInterval = 300 * time.Millisecond

// WaitOptions controls an element lookup with polling.
type WaitOptions struct {
	// Delay is slept before the first lookup, for pages that re-render right
	// after a click and would otherwise match the outgoing DOM.
	Delay time.Duration

	// MaxWait bounds how long to wait for at least one match.
	MaxWait time.Duration

	// Poll is the interval between lookups. Zero uses DefaultPollInterval.
	Poll time.Duration
}

// WaitFor polls until the locator matches at least one element and returns
// all matches.
//
// Returns ErrTimeout (wrapped with the locator) if nothing appears within
// opts.MaxWait, or the context error if ctx ends first.
//
// Example:
//
//	rows, err := browser.WaitFor(ctx, s, selenium.ByXPATH, `//div[@class="row"]`,
//	    browser.WaitOptions{Delay: time.Second, MaxWait: 15 * time.Second})
func WaitFor(ctx context.Context, s Session, by, value string, opts WaitOptions) ([]Element, error) {
	if err := Sleep(ctx, opts.Delay); err != nil {
		return nil, err
	}

	poll := opts.Poll
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	deadline := time.Now().Add(opts.MaxWait)

	for {
		found, err := s.FindAll(by, value)
		if err == nil && len(found) > 0 {
			return found, nil
		}
		if err != nil && !IsNoSuchElement(err) && !IsStale(err) {
			return nil, fmt.Errorf("find %s: %w", value, err)
		}
		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, value)
		}
		if err := Sleep(ctx, poll); err != nil {
			return nil, err
		}
	}
}

// WaitForOne is WaitFor returning the match at index.
func WaitForOne(ctx context.Context, s Session, by, value string, index int, opts WaitOptions) (Element, error) {
	found, err := WaitFor(ctx, s, by, value, opts)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(found) {
		return nil, fmt.Errorf("%w: %s has %d matches, want index %d", ErrNoSuchElement, value, len(found), index)
	}
	return found[index], nil
}

// LiveOnly drops elements whose references went stale.
//
// Calling any method forces the driver to check the reference, so each
// element is probed with IsEnabled. Errors other than staleness keep the
// element: the caller's next read will surface them.
func LiveOnly(elements []Element) []Element {
	live := make([]Element, 0, len(elements))
	for _, el := range elements {
		if _, err := el.IsEnabled(); IsStale(err) {
			continue
		}
		live = append(live, el)
	}
	return live
}

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
