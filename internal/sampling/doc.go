// Package sampling runs the shuffle audit: it plays the shuffled playlist
// over and over and records the order in which tracks come up.
//
// # Sampler
//
// The Sampler coordinates a sampling session:
//
//  1. Log in with exported cookies and open the liked-tracks playlist
//  2. Load the cached tracklist, or scrape and cache it
//  3. Turn shuffle on
//  4. Per pass, reopen the playlist, press play and resolve each playing
//     track to its catalogue number, pressing next after every track
//  5. Store each finished pass
//
// # Basic Usage
//
//	sampler := sampling.NewSampler(session, st, settings.ToSamplerConfig(), func(event sampling.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	if err := sampler.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	err := sampler.Run(ctx, 1000)
//	if errors.Is(err, context.Canceled) {
//	    // interrupted; every finished pass is already stored
//	}
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// Progress returns a snapshot (passes stored, first-track mean against the
// tracklist's true mean, tracks played in the current pass) for dashboards.
//
// # Retry Logic
//
// The page regularly fails to render the play button or the player bar in
// time. A failed pass is discarded and retried with exponential backoff,
// configured via Config.PassMaxRetries, PassRetryCooldown and
// PassRetryExponent. When the retries run out a screenshot is saved to
// Config.ScreenshotDir and Run returns the error; passes already stored are
// kept and a later run resumes from them.
package sampling
