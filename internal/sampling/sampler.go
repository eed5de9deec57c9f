package sampling

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/VArrow2001/shuffle-audit/internal/browser"
	ioutils "github.com/VArrow2001/shuffle-audit/internal/io"
	"github.com/VArrow2001/shuffle-audit/internal/metrics"
	"github.com/VArrow2001/shuffle-audit/internal/model"
	"github.com/VArrow2001/shuffle-audit/internal/store"
	"github.com/VArrow2001/shuffle-audit/internal/yandex"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a sampling progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// ErrNotInitialized is returned by TrackOrder and Run before Initialize.
var ErrNotInitialized = errors.New("sampler not initialized")

// Config holds the sampler's URLs, paths and timings.
type Config struct {
	BaseURL      string
	PlaylistsURL string
	CookiesPath  string

	// Rescrape ignores a cached tracklist.
	Rescrape bool

	ScreenshotDir     string
	ScreenshotMaxSize int

	WaitTimeout    time.Duration
	PollInterval   time.Duration
	ReadRetries    int
	ReadRetryDelay time.Duration
	ScrollStep     int
	ScrollPause    time.Duration
	Pauses         yandex.Pauses

	// NextTrackPause follows every press of the next button.
	NextTrackPause time.Duration
	// SameTrackRetries is how many identical readings in a row are taken as
	// the player lagging before the track is recorded again anyway.
	SameTrackRetries int
	// PassLength is the number of tracks recorded per pass; 0 or anything
	// above the tracklist length means the whole tracklist.
	PassLength int

	PassMaxRetries    int
	PassRetryCooldown float64
	PassRetryExponent float64
}

func (c *Config) timing() yandex.Timing {
	return yandex.Timing{
		WaitTimeout:    c.WaitTimeout,
		Poll:           c.PollInterval,
		ReadRetries:    c.ReadRetries,
		ReadRetryDelay: c.ReadRetryDelay,
		ScrollStep:     c.ScrollStep,
		ScrollPause:    c.ScrollPause,
		Pauses:         c.Pauses,
	}
}

// Progress is a snapshot of a running Sampler.
type Progress struct {
	// Passes is the number of stored passes.
	Passes int
	// FirstTrackMean is the mean catalogue number of the first track played
	// over all stored passes.
	FirstTrackMean float64
	// TrueMean is the mean catalogue number of the tracklist.
	TrueMean float64
	// Played is the number of tracks recorded in the pass in progress.
	Played     int
	PassLength int
	Tracks     int
}

// Sampler records the order in which the shuffled playlist plays.
type Sampler struct {
	cfg         *Config
	session     browser.Session
	store       *store.Store
	scraper     *yandex.Scraper
	screenshots *ioutils.Screenshots
	resolver    yandex.Resolver

	tracks   *model.Tracklist
	samples  *model.SampleSet
	trueMean float64
	played   int

	onProgress func(ProgressEvent)
	mu         sync.RWMutex
}

// NewSampler creates a Sampler driving session and persisting to st.
func NewSampler(session browser.Session, st *store.Store, cfg *Config, onProgress func(ProgressEvent)) *Sampler {
	return &Sampler{
		cfg:         cfg,
		session:     session,
		store:       st,
		scraper:     yandex.NewScraper(session, cfg.timing()),
		screenshots: ioutils.NewScreenshots(cfg.ScreenshotDir, cfg.ScreenshotMaxSize),
		onProgress:  onProgress,
	}
}

// SetResolver installs a manual picker for titles shared by several rows.
func (s *Sampler) SetResolver(r yandex.Resolver) {
	s.resolver = r
}

// Initialize logs in, opens the liked-tracks playlist and loads the
// tracklist and the passes stored by earlier runs.
//
// The tracklist comes from the store when cached; otherwise (or with
// Config.Rescrape) it is scraped from the open playlist and cached.
func (s *Sampler) Initialize(ctx context.Context) error {
	cookies, err := yandex.LoadCookies(s.cfg.CookiesPath)
	if err != nil {
		return err
	}
	if err := browser.Authorise(s.session, s.cfg.BaseURL, cookies); err != nil {
		return fmt.Errorf("authorise: %w", err)
	}
	s.progress(ProgressEvent{Message: fmt.Sprintf("Loaded %d cookies", len(cookies)), Level: LevelVerbose})

	if err := s.scraper.OpenCollection(ctx, s.cfg.BaseURL); err != nil {
		return s.fail(ctx, "open collection", err)
	}
	if err := s.scraper.OpenPlaylist(ctx); err != nil {
		return s.fail(ctx, "open playlist", err)
	}

	tracks, err := s.loadTracklist(ctx)
	if err != nil {
		return err
	}

	samples, err := s.store.LoadSamples(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.tracks = tracks
	s.samples = samples
	s.trueMean = tracks.Mean()
	s.mu.Unlock()

	metrics.TracklistSize.Set(float64(tracks.Len()))
	metrics.TrueMean.Set(tracks.Mean())
	metrics.StoredPasses.Set(float64(samples.Len()))
	metrics.FirstTrackMean.Set(samples.FirstTrackMean())

	s.progress(ProgressEvent{
		Message: fmt.Sprintf("Tracklist: %d tracks, true mean %.2f; %d passes stored", tracks.Len(), tracks.Mean(), samples.Len()),
		Level:   LevelInfo,
	})
	return nil
}

func (s *Sampler) loadTracklist(ctx context.Context) (*model.Tracklist, error) {
	if !s.cfg.Rescrape {
		tl, err := s.store.LoadTracklist(ctx)
		if err == nil {
			s.progress(ProgressEvent{Message: fmt.Sprintf("Using cached tracklist (%d tracks)", tl.Len()), Level: LevelVerbose})
			return tl, nil
		}
		if !errors.Is(err, store.ErrNoTracklist) {
			return nil, err
		}
	}

	s.progress(ProgressEvent{Message: "Scraping tracklist", Level: LevelInfo})
	tl, err := s.scraper.Tracklist(ctx, func(loaded int) {
		s.progress(ProgressEvent{Message: fmt.Sprintf("Loaded %d tracks", loaded), Level: LevelVerbose})
	})
	if err != nil {
		return nil, s.fail(ctx, "scrape tracklist", err)
	}

	if err := s.store.SaveTracklist(ctx, tl); err != nil {
		return nil, err
	}
	s.progress(ProgressEvent{Message: fmt.Sprintf("Cached tracklist (%d tracks)", tl.Len()), Level: LevelSuccess})
	return tl, nil
}

// Tracklist returns the loaded tracklist, or nil before Initialize.
func (s *Sampler) Tracklist() *model.Tracklist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracks
}

// TrackOrder plays the playlist from the top and returns the catalogue
// numbers of the first PassLength tracks in the order they played.
//
// A reading equal to the previous one means the player has not moved on
// yet, so it is read again after a short delay; once SameTrackRetries such
// readings pile up, the track is taken to be a genuine repeat and recorded.
// On error, the order recorded so far is returned with it.
func (s *Sampler) TrackOrder(ctx context.Context) ([]int, error) {
	s.mu.RLock()
	tracks := s.tracks
	s.mu.RUnlock()
	if tracks == nil {
		return nil, ErrNotInitialized
	}

	if err := s.startPlayback(ctx); err != nil {
		return nil, err
	}

	length := s.passLength(tracks)
	np := yandex.NewNowPlaying(s.session, s.cfg.timing(), tracks, s.resolver)
	order := make([]int, 0, length)
	s.setPlayed(0)

	var previous model.Track
	recorded := false
	retries := 0

	for len(order) < length {
		reading, err := np.Current(ctx)
		if err != nil {
			return order, fmt.Errorf("read track %d: %w", len(order)+1, err)
		}
		if reading.Guessed {
			metrics.GuessedTracksTotal.Inc()
			s.progress(ProgressEvent{
				Message: fmt.Sprintf("Ambiguous title %q by %q, assuming %s", reading.Title, reading.Artists, reading.Track),
				Level:   LevelWarning,
			})
		}

		if recorded && reading.Track == previous && retries < s.cfg.SameTrackRetries {
			retries++
			metrics.SameTrackRetriesTotal.Inc()
			if err := browser.Sleep(ctx, s.cfg.ReadRetryDelay); err != nil {
				return order, err
			}
			continue
		}

		order = append(order, reading.Track.Number)
		previous = reading.Track
		recorded = true
		retries = 0
		s.setPlayed(len(order))
		metrics.TracksRecordedTotal.Inc()
		s.progress(ProgressEvent{
			Message: fmt.Sprintf("[%d/%d] %d. %s", len(order), length, reading.Track.Number, reading.Track),
			Level:   LevelVerbose,
		})

		if err := s.scraper.Next(ctx); err != nil {
			return order, err
		}
		if err := browser.Sleep(ctx, s.cfg.NextTrackPause); err != nil {
			return order, err
		}
	}

	return order, nil
}

// startPlayback reopens the playlist and presses play, reopening again
// while the play button fails to show.
func (s *Sampler) startPlayback(ctx context.Context) error {
	var err error
	for tries := 0; tries <= s.cfg.PassMaxRetries; tries++ {
		if err = s.scraper.OpenPlaylistFrom(ctx, s.cfg.PlaylistsURL); err != nil {
			return err
		}
		err = s.scraper.Play(ctx)
		if !errors.Is(err, yandex.ErrNoPlayButton) {
			return err
		}
		s.progress(ProgressEvent{Message: "Play button missing, reopening playlist", Level: LevelVerbose})
	}
	return err
}

func (s *Sampler) passLength(tracks *model.Tracklist) int {
	if s.cfg.PassLength <= 0 || s.cfg.PassLength > tracks.Len() {
		return tracks.Len()
	}
	return s.cfg.PassLength
}

// Run enables shuffle and records passes until target passes are stored,
// counting those from earlier runs. A target of 0 runs until ctx is done.
//
// Every pass is stored as soon as it completes. A failed pass is retried
// with exponential backoff; when the retries run out, a screenshot is saved
// and the error returned. Cancelling ctx abandons the pass in progress and
// returns the context error.
func (s *Sampler) Run(ctx context.Context, target int) error {
	if s.Tracklist() == nil {
		return ErrNotInitialized
	}

	if err := s.scraper.EnableShuffle(ctx); err != nil {
		return s.fail(ctx, "enable shuffle", err)
	}

	failures := 0
	for target <= 0 || s.Progress().Passes < target {
		if err := ctx.Err(); err != nil {
			return s.stopped(err)
		}

		pass := model.Pass{StartedAt: time.Now()}
		order, err := s.TrackOrder(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return s.stopped(ctxErr)
			}
			metrics.PassFailuresTotal.Inc()
			if failures >= s.cfg.PassMaxRetries {
				return s.fail(ctx, "sampling", err)
			}
			s.progress(ProgressEvent{
				Message: fmt.Sprintf("Pass failed after %d tracks (retry %d/%d): %v", len(order), failures+1, s.cfg.PassMaxRetries, err),
				Level:   LevelWarning,
			})
			s.waitForRetry(ctx, failures)
			failures++
			continue
		}
		failures = 0

		pass.Order = order
		pass.FinishedAt = time.Now()
		// A finished pass is kept even if ctx was cancelled meanwhile.
		if err := s.store.AppendPass(context.WithoutCancel(ctx), &pass); err != nil {
			return fmt.Errorf("store pass: %w", err)
		}

		s.mu.Lock()
		s.samples.Add(pass)
		s.mu.Unlock()

		p := s.Progress()
		metrics.PassesTotal.Inc()
		metrics.PassDuration.Observe(pass.FinishedAt.Sub(pass.StartedAt).Seconds())
		metrics.StoredPasses.Set(float64(p.Passes))
		metrics.FirstTrackMean.Set(p.FirstTrackMean)

		first, _ := pass.First()
		s.progress(ProgressEvent{
			Message: fmt.Sprintf("Pass %d: first track %d, sample mean %.2f (true mean %.2f)", p.Passes, first, p.FirstTrackMean, p.TrueMean),
			Level:   LevelSuccess,
		})
	}

	return nil
}

// Progress returns a snapshot of the sampler state.
func (s *Sampler) Progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := Progress{TrueMean: s.trueMean, Played: s.played}
	if s.tracks != nil {
		p.Tracks = s.tracks.Len()
		p.PassLength = s.passLength(s.tracks)
	}
	if s.samples != nil {
		p.Passes = s.samples.Len()
		p.FirstTrackMean = s.samples.FirstTrackMean()
	}
	return p
}

// Samples returns a copy of the stored passes.
func (s *Sampler) Samples() *model.SampleSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := &model.SampleSet{}
	if s.samples != nil {
		out.Passes = append(out.Passes, s.samples.Passes...)
	}
	return out
}

func (s *Sampler) setPlayed(n int) {
	s.mu.Lock()
	s.played = n
	s.mu.Unlock()
}

func (s *Sampler) stopped(err error) error {
	p := s.Progress()
	s.progress(ProgressEvent{Message: fmt.Sprintf("Stopped with %d passes stored", p.Passes), Level: LevelInfo})
	return err
}

// fail saves a screenshot of the browser for later inspection and wraps err.
func (s *Sampler) fail(ctx context.Context, stage string, err error) error {
	if ctx.Err() != nil {
		return err
	}
	if s.cfg.ScreenshotDir != "" {
		if shot, shotErr := s.session.Screenshot(); shotErr == nil {
			path, saveErr := s.screenshots.Save(ctx, shot, stage)
			if saveErr != nil {
				s.progress(ProgressEvent{Message: fmt.Sprintf("Error saving screenshot: %v", saveErr), Level: LevelWarning})
			} else {
				s.progress(ProgressEvent{Message: fmt.Sprintf("Saved screenshot: %s", path), Level: LevelInfo})
			}
		}
	}
	s.progress(ProgressEvent{Message: fmt.Sprintf("Error during %s: %v", stage, err), Level: LevelError})
	return fmt.Errorf("%s: %w", stage, err)
}

func (s *Sampler) waitForRetry(ctx context.Context, tries int) {
	cooldown := s.cfg.PassRetryCooldown * math.Pow(s.cfg.PassRetryExponent, float64(tries))
	_ = browser.Sleep(ctx, time.Duration(cooldown*float64(time.Second)))
}

func (s *Sampler) progress(event ProgressEvent) {
	if s.onProgress != nil {
		s.onProgress(event)
	}
}
