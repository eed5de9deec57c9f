package yandex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tebeka/selenium"

	"github.com/VArrow2001/shuffle-audit/internal/browser"
	"github.com/VArrow2001/shuffle-audit/internal/model"
)

// ErrNoPlayButton is returned by Play when the playlist sidebar never shows
// its play button; reopening the playlist usually fixes it.
var ErrNoPlayButton = errors.New("playlist play button not found")

// Timing holds the tunable waits used while driving the page.
type Timing struct {
	// WaitTimeout bounds generic element waits.
	WaitTimeout time.Duration
	// Poll is the lookup interval while waiting.
	Poll time.Duration
	// ReadRetries and ReadRetryDelay bound racy reads of the player bar.
	ReadRetries    int
	ReadRetryDelay time.Duration
	// ScrollStep is the wheel distance in pixels per pagination step.
	ScrollStep int
	// ScrollPause lets the list render newly loaded rows.
	ScrollPause time.Duration
	// Pauses are the fixed per-interaction delays.
	Pauses Pauses
}

// DefaultTiming returns the timings the site was observed to need.
func DefaultTiming() Timing {
	return Timing{
		WaitTimeout:    15 * time.Second,
		Poll:           browser.DefaultPollInterval,
		ReadRetries:    7,
		ReadRetryDelay: 300 * time.Millisecond,
		ScrollStep:     300,
		ScrollPause:    2 * time.Second,
		Pauses:         DefaultPauses(),
	}
}

// Scraper drives Yandex Music pages: navigation, playback controls and
// scroll-to-load tracklist extraction.
//
// Example usage:
//
//	sc := yandex.NewScraper(session, yandex.DefaultTiming())
//	if err := sc.OpenCollection(ctx, "https://music.yandex.ru"); err != nil {
//	    return err
//	}
//	if err := sc.OpenPlaylist(ctx); err != nil {
//	    return err
//	}
//	tl, err := sc.Tracklist(ctx, nil)
type Scraper struct {
	session browser.Session
	timing  Timing
}

// NewScraper creates a Scraper over session.
func NewScraper(session browser.Session, timing Timing) *Scraper {
	return &Scraper{session: session, timing: timing}
}

func (sc *Scraper) wait(delay, max time.Duration) browser.WaitOptions {
	return browser.WaitOptions{Delay: delay, MaxWait: max, Poll: sc.timing.Poll}
}

func (sc *Scraper) click(ctx context.Context, xpath string, opts browser.WaitOptions) error {
	el, err := browser.WaitForOne(ctx, sc.session, selenium.ByXPATH, xpath, 0, opts)
	if err != nil {
		return err
	}
	return el.Click()
}

// OpenCollection loads baseURL and clicks the "Collection" tab of the
// navigation bar.
func (sc *Scraper) OpenCollection(ctx context.Context, baseURL string) error {
	if err := sc.session.Get(baseURL); err != nil {
		return fmt.Errorf("open %s: %w", baseURL, err)
	}
	if err := sc.click(ctx, CollectionTab, sc.wait(0, sc.timing.Pauses.CollectionWait)); err != nil {
		return fmt.Errorf("open collection: %w", err)
	}
	return nil
}

// OpenPlaylist clicks the first selectable playlist on the current page,
// which on the collection page is the liked-tracks playlist.
func (sc *Scraper) OpenPlaylist(ctx context.Context) error {
	if err := sc.click(ctx, SelectablePlaylist, sc.wait(sc.timing.Pauses.Playlist, sc.timing.Pauses.PlaylistWait)); err != nil {
		return fmt.Errorf("open playlist: %w", err)
	}
	return nil
}

// OpenPlaylistFrom navigates to a playlists page and opens the first
// selectable playlist there.
func (sc *Scraper) OpenPlaylistFrom(ctx context.Context, playlistsURL string) error {
	if err := browser.Sleep(ctx, sc.timing.Pauses.BeforeNavigate); err != nil {
		return err
	}
	if err := sc.session.Get(playlistsURL); err != nil {
		return fmt.Errorf("open %s: %w", playlistsURL, err)
	}
	if err := sc.OpenPlaylist(ctx); err != nil {
		return err
	}
	return browser.Sleep(ctx, sc.timing.Pauses.AfterPlaylistOpen)
}

// Play presses the playlist's play button.
//
// Returns ErrNoPlayButton if the button does not show up in time.
func (sc *Scraper) Play(ctx context.Context) error {
	err := sc.click(ctx, PlaylistPlayButton, sc.wait(sc.timing.Pauses.BeforePlayLookup, sc.timing.Pauses.PlayButtonWait))
	if errors.Is(err, browser.ErrTimeout) {
		return ErrNoPlayButton
	}
	if err != nil {
		return fmt.Errorf("press play: %w", err)
	}
	return browser.Sleep(ctx, sc.timing.Pauses.AfterPlayClick)
}

// Next presses the player's next-track button.
func (sc *Scraper) Next(ctx context.Context) error {
	if err := sc.click(ctx, NextButton, sc.wait(0, sc.timing.WaitTimeout)); err != nil {
		return fmt.Errorf("press next: %w", err)
	}
	return nil
}

// EnableShuffle toggles the player's shuffle button.
func (sc *Scraper) EnableShuffle(ctx context.Context) error {
	if err := sc.click(ctx, ShuffleButton, sc.wait(0, sc.timing.Pauses.ShuffleWait)); err != nil {
		return fmt.Errorf("enable shuffle: %w", err)
	}
	return nil
}

// Tracklist scrapes the open playlist, scrolling until no new rows load.
//
// The list is virtualised: only a window of rows exists in the DOM at a time.
// Each step reads the rendered rows from the page source, then scrolls the
// wheel by ScrollStep pixels from the last rendered row. Rows are merged with
// deduplication, and pagination stops once a scroll leaves the last rendered
// row unchanged.
//
// onPage, if not nil, is called after each step with the number of unique
// rows collected so far.
func (sc *Scraper) Tracklist(ctx context.Context, onPage func(loaded int)) (*model.Tracklist, error) {
	tl := model.NewTracklist()

	rows, origin, err := sc.renderedRows(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("playlist shows no tracks")
	}
	tl.Merge(rows)
	if onPage != nil {
		onPage(tl.Len())
	}

	last := rows[len(rows)-1]
	for {
		if err := sc.session.ScrollFrom(origin, 0, sc.timing.ScrollStep); err != nil {
			return nil, fmt.Errorf("scroll tracklist: %w", err)
		}
		if err := browser.Sleep(ctx, sc.timing.ScrollPause); err != nil {
			return nil, err
		}

		rows, origin, err = sc.renderedRows(ctx)
		if err != nil {
			return nil, err
		}
		tl.Merge(rows)
		if onPage != nil {
			onPage(tl.Len())
		}

		if len(rows) == 0 || rows[len(rows)-1] == last {
			break
		}
		last = rows[len(rows)-1]
	}

	return tl, nil
}

// renderedRows waits for the row elements, then parses the page source.
// It returns the parsed rows and the last row element as the next scroll origin.
func (sc *Scraper) renderedRows(ctx context.Context) ([]model.Track, browser.Element, error) {
	elements, err := browser.WaitFor(ctx, sc.session, selenium.ByXPATH, TrackRow, sc.wait(sc.timing.Pauses.Rows, sc.timing.WaitTimeout))
	if err != nil {
		return nil, nil, fmt.Errorf("wait for tracklist: %w", err)
	}

	source, err := sc.session.PageSource()
	if err != nil {
		return nil, nil, fmt.Errorf("read page source: %w", err)
	}
	rows, err := ParseTrackRows(source)
	if err != nil {
		return nil, nil, err
	}

	return rows, elements[len(elements)-1], nil
}
