package yandex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tebeka/selenium"

	"github.com/VArrow2001/shuffle-audit/internal/browser"
	"github.com/VArrow2001/shuffle-audit/internal/model"
)

var (
	// ErrUnknownTrack is returned when the playing title matches no catalogue row.
	ErrUnknownTrack = errors.New("playing track not in tracklist")

	// ErrAmbiguousTrack is returned when several rows share the playing title,
	// the artists do not single one out and there is no previous track to
	// fall back on.
	ErrAmbiguousTrack = errors.New("playing track is ambiguous")

	// ErrTitleUnavailable is returned when the player bar never shows exactly
	// one readable title.
	ErrTitleUnavailable = errors.New("could not read the playing title")

	errNotSingle = errors.New("expected exactly one live element")
)

// Resolver picks the playing track among rows that share its title when the
// artists read from the player bar do not decide it. It returns false to
// decline.
type Resolver func(title, artists string, candidates []model.Track) (model.Track, bool)

// Reading is one resolved observation of the player bar.
type Reading struct {
	Track model.Track
	// Title and Artists are the raw strings read from the page.
	Title   string
	Artists string
	// Guessed is set when the title was ambiguous and the previous track was
	// reused.
	Guessed bool
}

// NowPlaying resolves the player bar to catalogue rows.
//
// It remembers the last resolved track: the player bar renders the title and
// the artists separately, so right after a track change the artists can
// belong to the next track while the title still shows the old one. When
// that makes a shared title unresolvable, the previous track is reported as
// a guess.
type NowPlaying struct {
	session  browser.Session
	timing   Timing
	tracks   *model.Tracklist
	resolver Resolver

	previous    model.Track
	hasPrevious bool
}

// NewNowPlaying creates a NowPlaying resolving against tracks.
// resolver may be nil.
func NewNowPlaying(session browser.Session, timing Timing, tracks *model.Tracklist, resolver Resolver) *NowPlaying {
	return &NowPlaying{
		session:  session,
		timing:   timing,
		tracks:   tracks,
		resolver: resolver,
	}
}

// Current reads the player bar and resolves it to a catalogue row.
//
// Steps:
//  1. Wait for the player bar's title container
//  2. Read the title link, requiring exactly one live element, with bounded
//     retries; tracks withdrawn from the service render a plain span instead,
//     which is tried next
//  3. Look the normalized title up in the tracklist
//  4. If several rows share it, read the artists and narrow by them; if that
//     fails, ask the Resolver; if that declines, reuse the previous track
func (np *NowPlaying) Current(ctx context.Context) (Reading, error) {
	opts := browser.WaitOptions{
		Delay:   np.timing.Pauses.NowPlaying,
		MaxWait: np.timing.Pauses.NowPlayingWait,
		Poll:    np.timing.Poll,
	}
	if _, err := browser.WaitFor(ctx, np.session, selenium.ByXPATH, NowPlayingContainer, opts); err != nil {
		return Reading{}, fmt.Errorf("wait for player bar: %w", err)
	}

	title, err := np.readSingle(ctx, NowPlayingTitleLink, func(el browser.Element) (string, error) {
		return el.Attribute("title")
	})
	if errors.Is(err, errNotSingle) {
		title, err = np.readSingle(ctx, NowPlayingTitleSpan, func(el browser.Element) (string, error) {
			return el.Text()
		})
	}
	if errors.Is(err, errNotSingle) {
		return Reading{}, ErrTitleUnavailable
	}
	if err != nil {
		return Reading{}, err
	}

	reading := Reading{Title: title}
	candidates := np.tracks.ByTitle(title)

	switch len(candidates) {
	case 0:
		return reading, fmt.Errorf("%w: %q", ErrUnknownTrack, title)
	case 1:
		reading.Track = candidates[0]
		reading.Artists = candidates[0].Artists
		np.remember(reading.Track)
		return reading, nil
	}

	artists, err := np.readArtists(ctx)
	if err != nil {
		return reading, err
	}
	reading.Artists = artists

	if narrowed := model.FilterArtists(candidates, artists); len(narrowed) == 1 {
		reading.Track = narrowed[0]
		np.remember(reading.Track)
		return reading, nil
	}

	if np.resolver != nil {
		if picked, ok := np.resolver(title, artists, candidates); ok {
			reading.Track = picked
			np.remember(picked)
			return reading, nil
		}
	}

	if !np.hasPrevious {
		return reading, fmt.Errorf("%w: %q by %q", ErrAmbiguousTrack, title, artists)
	}
	reading.Track = np.previous
	reading.Guessed = true
	return reading, nil
}

func (np *NowPlaying) remember(t model.Track) {
	np.previous = t
	np.hasPrevious = true
}

// readSingle polls xpath until exactly one live element is present and read
// succeeds on it. Stale references during the read count as a failed try.
// Returns errNotSingle when the retries run out.
func (np *NowPlaying) readSingle(ctx context.Context, xpath string, read func(browser.Element) (string, error)) (string, error) {
	for i := 0; i < np.timing.ReadRetries; i++ {
		if i > 0 {
			if err := browser.Sleep(ctx, np.timing.ReadRetryDelay); err != nil {
				return "", err
			}
		}

		found, err := np.session.FindAll(selenium.ByXPATH, xpath)
		if err != nil {
			if browser.IsStale(err) || browser.IsNoSuchElement(err) {
				continue
			}
			return "", fmt.Errorf("find %s: %w", xpath, err)
		}

		live := browser.LiveOnly(found)
		if len(live) != 1 {
			continue
		}

		value, err := read(live[0])
		if browser.IsStale(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("read %s: %w", xpath, err)
		}
		return strings.TrimSpace(value), nil
	}
	return "", errNotSingle
}

// readArtists reads the player bar's artist links and joins their titles.
// A stale link restarts the read; after the retries run out the artists
// read so far (possibly none) are returned.
func (np *NowPlaying) readArtists(ctx context.Context) (string, error) {
	var names []string
	for i := 0; i < np.timing.ReadRetries; i++ {
		if i > 0 {
			if err := browser.Sleep(ctx, np.timing.ReadRetryDelay); err != nil {
				return "", err
			}
		}

		found, err := np.session.FindAll(selenium.ByXPATH, NowPlayingArtists)
		if err != nil {
			if browser.IsStale(err) || browser.IsNoSuchElement(err) {
				continue
			}
			return "", fmt.Errorf("find artists: %w", err)
		}

		names = names[:0]
		stale := false
		for _, el := range browser.LiveOnly(found) {
			name, err := el.Attribute("title")
			if browser.IsStale(err) {
				stale = true
				break
			}
			if err != nil {
				return "", fmt.Errorf("read artist: %w", err)
			}
			names = append(names, name)
		}
		if !stale {
			break
		}
	}
	return strings.Join(names, model.ArtistSeparator), nil
}
