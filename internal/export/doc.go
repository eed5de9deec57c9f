// Package export renders the tracklist and the recorded passes as files
// other tools can read.
//
// # Tracklist
//
//	w := export.NewTracklistWriter(export.FormatM3U, settings.BaseURL)
//	content, err := w.Write(tl)
//
// Supported formats:
//   - M3U (extended, with #EXTINF lines)
//   - PLS
//   - CSV
//
// # Samples
//
// SamplesCSV writes one row per pass with one column per position, which is
// the layout most statistics packages expect for a matrix of observations:
//
//	content, err := export.SamplesCSV(set)
package export
