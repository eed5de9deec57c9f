// Package yandex drives the Yandex Music web player.
//
// The package handles three jobs:
//
//  1. Scraping a playlist's tracklist from its virtualised, scroll-to-load list
//  2. Resolving the player bar's "now playing" title and artists back to a
//     tracklist row
//  3. Clicking through navigation and playback controls
//
// # Tracklist
//
//	sc := yandex.NewScraper(session, yandex.DefaultTiming())
//	tl, err := sc.Tracklist(ctx, func(n int) { fmt.Println(n, "rows") })
//
// Rows are parsed from page-source snapshots with ParseTrackRows, so a
// single round trip reads every rendered row.
//
// # Now Playing
//
//	np := yandex.NewNowPlaying(session, timing, tl, nil)
//	reading, err := np.Current(ctx)
//	if errors.Is(err, yandex.ErrUnknownTrack) {
//	    // the tracklist is out of date
//	}
//
// # Markup
//
// Every selector lives in selectors.go. They match exact class lists, so a
// redesign of the site breaks them; update them there.
package yandex
