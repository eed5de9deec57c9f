package model

import (
	"fmt"
	"regexp"
	"strings"
)

// ArtistSeparator joins several artist names into Track.Artists.
const ArtistSeparator = "; "

// Track represents a single row of a scraped playlist.
//
// Track contains:
//   - Number, the service's catalogue number for the track (its data-id)
//   - Artists, every credited artist joined with ArtistSeparator
//   - Title, the track title as displayed on the page
//
// Example:
//
//	track := NewTrack(123456, []string{"Daft Punk", "Pharrell Williams"}, "Get Lucky ")
//	// track.Artists = "Daft Punk; Pharrell Williams"
//	// track.Title   = "Get Lucky"
type Track struct {
	// Number is the catalogue number of the track.
	Number int `db:"number"`

	// Artists is the list of artist names joined with "; ".
	Artists string `db:"artists"`

	// Title is the track title with surrounding whitespace removed.
	Title string `db:"title"`
}

// NewTrack creates a Track, trimming the title and joining the artist names.
func NewTrack(number int, artists []string, title string) Track {
	return Track{
		Number:  number,
		Artists: strings.Join(artists, ArtistSeparator),
		Title:   strings.TrimSpace(title),
	}
}

// String returns "Artists - Title".
func (t Track) String() string {
	if t.Artists == "" {
		return t.Title
	}
	return fmt.Sprintf("%s - %s", t.Artists, t.Title)
}

var spaceRun = regexp.MustCompile(`\s{2,}`)

// NormalizeTitle prepares a title for catalogue comparison.
//
// The following transformations are applied:
//   - Surrounding whitespace is removed
//   - Runs of whitespace are collapsed to a single space
//   - The result is lowercased
//
// Example:
//
//	NormalizeTitle("  Get   Lucky ") // Returns "get lucky"
func NormalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	title = spaceRun.ReplaceAllString(title, " ")
	return strings.ToLower(title)
}
