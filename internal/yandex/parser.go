package yandex

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tebeka/selenium"

	"github.com/VArrow2001/shuffle-audit/internal/model"
	"github.com/VArrow2001/shuffle-audit/internal/yandex/dto"
)

// ParseTrackRows extracts playlist rows from a page source snapshot.
//
// Only rows that carry a track title (a link, or a plain span for tracks the
// service no longer streams) are returned; placeholder rows rendered while
// the list is still loading are skipped. For each row:
//   - Number comes from the data-id attribute
//   - Title is the trimmed title text
//   - Artists are the muted artist links' title attributes joined with "; "
//
// Returns an error if a titled row has a missing or non-numeric data-id,
// since that means the markup changed under the selectors.
func ParseTrackRows(htmlContent string) ([]model.Track, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page source: %w", err)
	}

	var (
		tracks []model.Track
		rowErr error
	)
	doc.Find(TrackRowCSS).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		titleSel := row.Find(RowTitleCSS).First()
		if titleSel.Length() == 0 {
			return true
		}

		idAttr, ok := row.Attr(RowNumberAttr)
		if !ok {
			rowErr = fmt.Errorf("track row %q has no %s", strings.TrimSpace(titleSel.Text()), RowNumberAttr)
			return false
		}
		number, err := strconv.Atoi(strings.TrimSpace(idAttr))
		if err != nil {
			rowErr = fmt.Errorf("track row %s=%q: %w", RowNumberAttr, idAttr, err)
			return false
		}

		var artists []string
		row.Find(RowArtistCSS).Each(func(_ int, a *goquery.Selection) {
			if name, ok := a.Attr(RowArtistAttr); ok {
				artists = append(artists, name)
			}
		})

		tracks = append(tracks, model.NewTrack(number, artists, titleSel.Text()))
		return true
	})

	if rowErr != nil {
		return nil, rowErr
	}
	return tracks, nil
}

// LoadCookies reads an exported cookie file.
func LoadCookies(path string) ([]selenium.Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}
	return dto.ParseCookies(data)
}
