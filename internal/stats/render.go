package stats

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// Render writes the report as console tables: a summary, the per-position
// means and the most frequent first tracks.
func Render(w io.Writer, r *Report) {
	summary := tablewriter.NewWriter(w)
	summary.SetHeader([]string{"Statistic", "Value"})
	summary.SetAlignment(tablewriter.ALIGN_LEFT)
	summary.AppendBulk([][]string{
		{"Tracks", strconv.Itoa(r.Tracks)},
		{"Passes", strconv.Itoa(r.Samples)},
		{"True mean", fmt.Sprintf("%.2f", r.TrueMean)},
		{"First-track mean", fmt.Sprintf("%.2f", r.FirstTrackMean)},
		{"Standard error", fmt.Sprintf("%.3f", r.StdErr)},
		{"z-score", fmt.Sprintf("%.3f (p = %.4f)", r.ZScore, r.ZPValue)},
		{"Chi-square", fmt.Sprintf("%.2f, df %d (p = %.4f)", r.ChiSquare, r.DegreesOfFreedom, r.ChiPValue)},
	})
	if r.Unmatched > 0 {
		summary.Append([]string{"Not in tracklist", strconv.Itoa(r.Unmatched)})
	}
	summary.Render()

	if len(r.Positions) > 0 {
		fmt.Fprintln(w)
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Position", "Passes", "Mean", "z"})
		table.SetAlignment(tablewriter.ALIGN_RIGHT)
		for _, p := range r.Positions {
			table.Append([]string{
				strconv.Itoa(p.Index + 1),
				strconv.Itoa(p.Count),
				fmt.Sprintf("%.2f", p.Mean),
				fmt.Sprintf("%.2f", p.ZScore),
			})
		}
		table.Render()
	}

	if len(r.MostFrequent) > 0 {
		fmt.Fprintln(w)
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"#", "Track", "First", "Expected"})
		for _, f := range r.MostFrequent {
			table.Append([]string{
				strconv.Itoa(f.Track.Number),
				f.Track.String(),
				strconv.Itoa(f.Count),
				fmt.Sprintf("%.1f", f.Expected),
			})
		}
		table.Render()
	}
}
