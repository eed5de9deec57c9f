package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/VArrow2001/shuffle-audit/internal/model"
)

// Format represents supported tracklist export formats.
//
// Each format targets a different consumer:
//   - M3U: extended M3U, importable by playlist transfer services
//   - PLS: INI-style format, used by Winamp-style players
//   - CSV: one row per track, for spreadsheets and notebooks
type Format int

const (
	// FormatM3U creates .m3u files with #EXTINF lines.
	FormatM3U Format = iota

	// FormatPLS creates .pls files.
	FormatPLS

	// FormatCSV creates .csv files with number, artists and title columns.
	FormatCSV
)

// ParseFormat maps a format name ("m3u", "pls", "csv") to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "m3u", "m3u8":
		return FormatM3U, nil
	case "pls":
		return FormatPLS, nil
	case "csv":
		return FormatCSV, nil
	default:
		return 0, fmt.Errorf("unknown export format %q", name)
	}
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatPLS:
		return "pls"
	case FormatCSV:
		return "csv"
	default:
		return "m3u"
	}
}

// TracklistWriter renders a scraped tracklist in one of the export formats.
//
// Entries keep the tracklist's scrape order. When a base URL is set, M3U and
// PLS entries point at the track's page on the service; otherwise the entry
// is the "Artists - Title" display name.
//
// Example:
//
//	w := NewTracklistWriter(FormatM3U, "https://music.yandex.ru")
//	content, err := w.Write(tl)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:-1,Daft Punk; Pharrell Williams - Get Lucky
//	// https://music.yandex.ru/track/101
type TracklistWriter struct {
	format  Format
	baseURL string
}

// NewTracklistWriter creates a TracklistWriter. baseURL may be empty.
func NewTracklistWriter(format Format, baseURL string) *TracklistWriter {
	return &TracklistWriter{
		format:  format,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Write renders tl.
func (w *TracklistWriter) Write(tl *model.Tracklist) ([]byte, error) {
	switch w.format {
	case FormatPLS:
		return w.createPLS(tl), nil
	case FormatCSV:
		return w.createCSV(tl)
	default:
		return w.createM3U(tl), nil
	}
}

func (w *TracklistWriter) location(t model.Track) string {
	if w.baseURL == "" {
		return t.String()
	}
	return fmt.Sprintf("%s/track/%d", w.baseURL, t.Number)
}

// createM3U generates an extended M3U playlist. Durations are unknown, so
// every entry uses -1.
//
//	#EXTM3U
//	#EXTINF:-1,Artists - Title
//	location
func (w *TracklistWriter) createM3U(tl *model.Tracklist) []byte {
	var sb strings.Builder

	sb.WriteString("#EXTM3U\n")
	for _, t := range tl.Tracks() {
		sb.WriteString(fmt.Sprintf("#EXTINF:-1,%s\n", t))
		sb.WriteString(w.location(t) + "\n")
	}

	return []byte(sb.String())
}

// createPLS generates a PLS playlist:
//
//	[playlist]
//	File1=location
//	Title1=Artists - Title
//	Length1=-1
//	NumberOfEntries=1
//	Version=2
func (w *TracklistWriter) createPLS(tl *model.Tracklist) []byte {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")
	tracks := tl.Tracks()
	for i, t := range tracks {
		idx := i + 1
		sb.WriteString(fmt.Sprintf("File%d=%s\n", idx, w.location(t)))
		sb.WriteString(fmt.Sprintf("Title%d=%s\n", idx, t))
		sb.WriteString(fmt.Sprintf("Length%d=-1\n", idx))
	}
	sb.WriteString(fmt.Sprintf("NumberOfEntries=%d\n", len(tracks)))
	sb.WriteString("Version=2\n")

	return []byte(sb.String())
}

func (w *TracklistWriter) createCSV(tl *model.Tracklist) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write([]string{"number", "artists", "title"}); err != nil {
		return nil, err
	}
	for _, t := range tl.Tracks() {
		if err := cw.Write([]string{strconv.Itoa(t.Number), t.Artists, t.Title}); err != nil {
			return nil, err
		}
	}

	cw.Flush()
	return buf.Bytes(), cw.Error()
}
