// Package stats tests recorded shuffle passes against a uniform shuffle.
//
//	report, err := stats.Analyze(tracklist, samples)
//	if err != nil {
//	    return err
//	}
//	stats.Render(os.Stdout, report)
//
// Two tests are run on the first track of every pass: a z-test of the mean
// catalogue number against the tracklist's mean, and a chi-square
// goodness-of-fit test of how often each track came first. Positions after
// the first get a mean and z-score each; with passes that stop before the
// whole tracklist plays those are only indicative.
package stats
