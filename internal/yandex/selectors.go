package yandex

import "time"

// Yandex Music DOM selectors.
// These are isolated here because the site changes its markup without
// notice. Update these when scraping breaks.

const (
	// Navigation
	CollectionTab      = `//a[@class="nav-kids__tab nav-kids__link typo-nav typo-nav_contrast" and contains(text(), "Collection")]`
	SelectablePlaylist = `//div[@class="playlist playlist_selectable"]`
	PlaylistPlayButton = `//button[@class="button-play button button_round button_action button_size_L button_ico local-icon-theme-white sidebar-playlist__play button-play__type_playlist"]`

	// Tracklist rows, as XPath for live elements
	TrackRow = `//div[@class="d-track typo-track d-track_inline-meta d-track__sidebar d-track_in-lib"]`

	// Tracklist rows, as CSS for page-source parsing
	TrackRowCSS   = `div.d-track.typo-track.d-track_inline-meta.d-track__sidebar.d-track_in-lib`
	RowTitleCSS   = `a.d-track__title.deco-link.deco-link_stronger, span.d-track__title.deco-link_stronger.deco-typo`
	RowArtistCSS  = `span.d-track__artists > a.deco-link.deco-link_muted`
	RowNumberAttr = "data-id"
	RowArtistAttr = "title"

	// Player bar
	NowPlayingContainer = `//div[@class="track__name-innerwrap"]`
	NowPlayingTitleLink = `//a[@class="d-link deco-link track__title"]`
	// NowPlayingTitleSpan is rendered instead of the link for tracks the
	// service has withdrawn but that still sit in the playlist.
	NowPlayingTitleSpan = `//span[@class="track__title"]`
	NowPlayingArtists   = `//span[@class="d-artists d-artists__expanded"]/a[@class="d-link deco-link"]`
	NextButton          = `//div[@class="player-controls__btn deco-player-controls__button player-controls__btn_next"]`
	ShuffleButton       = `//div[@class="d-icon d-icon_shuffle"]`
)

// Pauses are the settle delays and element waits the site was observed to
// need between interactions.
type Pauses struct {
	// Settle delays, slept before a lookup or after a click
	Rows              time.Duration
	Playlist          time.Duration
	BeforeNavigate    time.Duration
	AfterPlaylistOpen time.Duration
	BeforePlayLookup  time.Duration
	AfterPlayClick    time.Duration
	NowPlaying        time.Duration

	// Upper bounds for elements to appear
	CollectionWait time.Duration
	PlaylistWait   time.Duration
	PlayButtonWait time.Duration
	ShuffleWait    time.Duration
	NowPlayingWait time.Duration
}

// DefaultPauses returns the pauses that worked against the live site.
func DefaultPauses() Pauses {
	return Pauses{
		Rows:              time.Second,
		Playlist:          3 * time.Second,
		BeforeNavigate:    time.Second,
		AfterPlaylistOpen: 2 * time.Second,
		BeforePlayLookup:  time.Second,
		AfterPlayClick:    2 * time.Second,
		NowPlaying:        300 * time.Millisecond,

		CollectionWait: 25 * time.Second,
		PlaylistWait:   15 * time.Second,
		PlayButtonWait: 5 * time.Second,
		ShuffleWait:    3 * time.Second,
		NowPlayingWait: 10 * time.Second,
	}
}
