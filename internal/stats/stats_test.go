package stats

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/VArrow2001/shuffle-audit/internal/model"
)

func tracklist(numbers ...int) *model.Tracklist {
	tl := model.NewTracklist()
	for _, n := range numbers {
		tl.Add(model.Track{Number: n, Artists: "Artist", Title: "Track " + string(rune('A'+n%26))})
	}
	return tl
}

func samples(orders ...[]int) *model.SampleSet {
	set := &model.SampleSet{}
	for _, o := range orders {
		set.Add(model.Pass{Order: o})
	}
	return set
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAnalyze_EmptyTracklist(t *testing.T) {
	if _, err := Analyze(model.NewTracklist(), samples()); !errors.Is(err, ErrNoTracklist) {
		t.Errorf("Analyze() error = %v, want ErrNoTracklist", err)
	}
}

func TestAnalyze_NoSamples(t *testing.T) {
	r, err := Analyze(tracklist(1, 2, 3), samples())
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if r.Samples != 0 || r.TrueMean != 2 || r.Positions != nil {
		t.Errorf("Analyze() = %+v, want true mean 2 and nothing else", r)
	}
}

func TestAnalyze_PerfectlyUniform(t *testing.T) {
	// Every track comes first exactly twice.
	r, err := Analyze(tracklist(1, 2, 3, 4), samples(
		[]int{1, 2}, []int{2, 3}, []int{3, 4}, []int{4, 1},
		[]int{1, 3}, []int{2, 4}, []int{3, 1}, []int{4, 2},
	))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if r.Samples != 8 {
		t.Errorf("Samples = %d, want 8", r.Samples)
	}
	if !approx(r.TrueMean, 2.5) || !approx(r.FirstTrackMean, 2.5) {
		t.Errorf("means = %v / %v, want 2.5 / 2.5", r.TrueMean, r.FirstTrackMean)
	}
	// Population SD of 1..4 is sqrt(1.25).
	if !approx(r.TrueStdDev, math.Sqrt(1.25)) {
		t.Errorf("TrueStdDev = %v, want %v", r.TrueStdDev, math.Sqrt(1.25))
	}
	if !approx(r.StdErr, math.Sqrt(1.25)/math.Sqrt(8)) {
		t.Errorf("StdErr = %v", r.StdErr)
	}
	if r.ZScore != 0 || !approx(r.ZPValue, 1) {
		t.Errorf("z = %v (p %v), want 0 (p 1)", r.ZScore, r.ZPValue)
	}
	if r.ChiSquare != 0 || r.DegreesOfFreedom != 3 || !approx(r.ChiPValue, 1) {
		t.Errorf("chi-square = %v df %d (p %v), want 0 df 3 (p 1)", r.ChiSquare, r.DegreesOfFreedom, r.ChiPValue)
	}

	wantPositions := []Position{
		{Index: 0, Count: 8, Mean: 2.5, ZScore: 0},
		{Index: 1, Count: 8, Mean: 2.5, ZScore: 0},
	}
	if diff := cmp.Diff(wantPositions, r.Positions, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Positions mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze_Skewed(t *testing.T) {
	// Track 1 always comes first.
	var orders [][]int
	for i := 0; i < 20; i++ {
		orders = append(orders, []int{1})
	}
	r, err := Analyze(tracklist(1, 2, 3, 4), samples(orders...))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	// Expected 5 per track: (20-5)²/5 + 3*(0-5)²/5 = 45 + 15 = 60.
	if !approx(r.ChiSquare, 60) {
		t.Errorf("ChiSquare = %v, want 60", r.ChiSquare)
	}
	if r.ChiPValue > 1e-6 {
		t.Errorf("ChiPValue = %v, want tiny", r.ChiPValue)
	}
	if r.ZScore >= -3 || r.ZPValue > 0.01 {
		t.Errorf("z = %v (p %v), want strongly negative", r.ZScore, r.ZPValue)
	}

	if len(r.MostFrequent) != 1 {
		t.Fatalf("MostFrequent has %d entries, want 1", len(r.MostFrequent))
	}
	if f := r.MostFrequent[0]; f.Track.Number != 1 || f.Count != 20 || f.Expected != 5 {
		t.Errorf("MostFrequent[0] = %+v, want track 1 twenty times, 5 expected", f)
	}
}

func TestAnalyze_UnmatchedFirstTracks(t *testing.T) {
	r, err := Analyze(tracklist(1, 2), samples([]int{1}, []int{99}, []int{2}))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if r.Unmatched != 1 || r.Samples != 2 {
		t.Errorf("Unmatched = %d, Samples = %d, want 1 and 2", r.Unmatched, r.Samples)
	}
	if !approx(r.FirstTrackMean, 1.5) {
		t.Errorf("FirstTrackMean = %v, want 1.5", r.FirstTrackMean)
	}
}

func TestAnalyze_NumberOnSeveralRows(t *testing.T) {
	// The same catalogue number scraped with two artist strings is two rows.
	tl := model.NewTracklist(
		model.Track{Number: 1, Artists: "A", Title: "One"},
		model.Track{Number: 1, Artists: "A; B", Title: "One"},
		model.Track{Number: 10, Artists: "C", Title: "Ten"},
	)
	r, err := Analyze(tl, samples([]int{1}, []int{1}, []int{10}))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if r.TrueMean != tl.Mean() || !approx(r.TrueMean, 4) {
		t.Errorf("TrueMean = %v, want Tracklist.Mean() = %v", r.TrueMean, tl.Mean())
	}
	if r.Tracks != tl.Len() {
		t.Errorf("Tracks = %d, want %d", r.Tracks, tl.Len())
	}
	// Number 1 is expected on two of three first tracks, number 10 on one.
	if !approx(r.ChiSquare, 0) || r.DegreesOfFreedom != 1 {
		t.Errorf("chi-square = %v df %d, want 0 df 1", r.ChiSquare, r.DegreesOfFreedom)
	}
	if f := r.MostFrequent[0]; f.Track.Number != 1 || f.Count != 2 || !approx(f.Expected, 2) {
		t.Errorf("MostFrequent[0] = %+v, want track 1 twice, 2 expected", f)
	}
	// Population SD of {1, 1, 10}.
	if want := math.Sqrt(18); !approx(r.TrueStdDev, want) {
		t.Errorf("TrueStdDev = %v, want %v", r.TrueStdDev, want)
	}
}

func TestMostFrequent_OrderAndLimit(t *testing.T) {
	counts := make(map[int]int)
	tl := model.NewTracklist()
	for n := 1; n <= TopN+5; n++ {
		counts[n] = n % 3
		tl.Add(model.Track{Number: n})
	}

	got := mostFrequent(counts, newCatalogue(tl), 1)
	if len(got) != TopN {
		t.Fatalf("mostFrequent() returned %d entries, want %d", len(got), TopN)
	}
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if prev.Count < cur.Count || (prev.Count == cur.Count && prev.Track.Number > cur.Track.Number) {
			t.Errorf("entries %d and %d out of order: %+v, %+v", i-1, i, prev, cur)
		}
	}
}

func TestRender(t *testing.T) {
	r, err := Analyze(tracklist(1, 2, 3), samples([]int{3, 1}, []int{1, 2}))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	var buf bytes.Buffer
	Render(&buf, r)
	out := buf.String()

	for _, want := range []string{"FIRST-TRACK MEAN", "2.00", "CHI-SQUARE", "POSITION", "EXPECTED"} {
		if !strings.Contains(strings.ToUpper(out), want) {
			t.Errorf("Render() output missing %q:\n%s", want, out)
		}
	}
}
