package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/VArrow2001/shuffle-audit/internal/model"
)

// ErrNoTracklist is returned by Analyze without a tracklist to compare against.
var ErrNoTracklist = errors.New("empty tracklist")

// Report summarises how far the recorded passes are from a uniform shuffle.
//
// Under a uniform shuffle every track is equally likely to play first, so
// the first-track catalogue numbers are draws from the uniform distribution
// over the tracklist's numbers: their mean should approach TrueMean and the
// first-track counts should pass a chi-square goodness-of-fit test.
type Report struct {
	// Tracks is the number of playlist rows; a catalogue number listed on
	// several rows counts once per row.
	Tracks  int
	Samples int
	// Unmatched counts first tracks missing from the current tracklist.
	// They are left out of every statistic below.
	Unmatched int

	TrueMean float64
	// TrueStdDev is the population standard deviation of the tracklist's
	// numbers, the spread of a single uniform draw.
	TrueStdDev float64

	FirstTrackMean float64
	// StdErr is the standard error of FirstTrackMean under uniformity.
	StdErr float64
	// ZScore and ZPValue test FirstTrackMean against TrueMean (two-sided).
	ZScore  float64
	ZPValue float64

	// ChiSquare, DegreesOfFreedom and ChiPValue test the first-track counts
	// against equal expected counts.
	ChiSquare        float64
	DegreesOfFreedom int
	ChiPValue        float64

	// Positions holds one entry per position within a pass.
	Positions []Position
	// MostFrequent lists the tracks that came first most often.
	MostFrequent []Frequency
}

// Position summarises the tracks recorded at one position of every pass.
type Position struct {
	Index  int // zero-based
	Count  int
	Mean   float64
	ZScore float64
}

// Frequency is how often a track came first.
type Frequency struct {
	Track    model.Track
	Count    int
	Expected float64
}

// TopN bounds Report.MostFrequent.
const TopN = 10

// Analyze compares the recorded passes against a uniform shuffle of tracks.
func Analyze(tracks *model.Tracklist, samples *model.SampleSet) (*Report, error) {
	if tracks == nil || tracks.Len() == 0 {
		return nil, ErrNoTracklist
	}

	cat := newCatalogue(tracks)
	// Each playlist row is one equally likely outcome, so a number listed
	// on two rows weighs twice.
	_, trueStd := stat.PopMeanStdDev(cat.numbers, nil)

	r := &Report{
		Tracks:     tracks.Len(),
		TrueMean:   tracks.Mean(),
		TrueStdDev: trueStd,
	}

	var firsts []float64
	counts := make(map[int]int)
	for _, n := range samples.FirstTracks() {
		if _, ok := cat.byNumber[n]; !ok {
			r.Unmatched++
			continue
		}
		firsts = append(firsts, float64(n))
		counts[n]++
	}
	r.Samples = len(firsts)
	if r.Samples == 0 {
		return r, nil
	}

	r.FirstTrackMean = stat.Mean(firsts, nil)
	r.StdErr = trueStd / math.Sqrt(float64(r.Samples))
	r.ZScore = zScore(r.FirstTrackMean, r.TrueMean, r.StdErr)
	r.ZPValue = twoSided(r.ZScore)

	r.ChiSquare, r.DegreesOfFreedom = chiSquare(counts, cat, r.Samples)
	if r.DegreesOfFreedom > 0 {
		r.ChiPValue = distuv.ChiSquared{K: float64(r.DegreesOfFreedom)}.Survival(r.ChiSquare)
	} else {
		r.ChiPValue = 1
	}

	r.MostFrequent = mostFrequent(counts, cat, r.Samples)
	r.Positions = positions(samples, cat.byNumber, r.TrueMean, trueStd)

	return r, nil
}

// catalogue indexes a tracklist by catalogue number.
type catalogue struct {
	byNumber map[int]model.Track
	// rows counts the playlist rows carrying each number.
	rows    map[int]int
	numbers []float64
}

func newCatalogue(tracks *model.Tracklist) catalogue {
	c := catalogue{
		byNumber: make(map[int]model.Track, tracks.Len()),
		rows:     make(map[int]int, tracks.Len()),
		numbers:  make([]float64, 0, tracks.Len()),
	}
	for _, t := range tracks.Tracks() {
		if _, ok := c.byNumber[t.Number]; !ok {
			c.byNumber[t.Number] = t
		}
		c.rows[t.Number]++
		c.numbers = append(c.numbers, float64(t.Number))
	}
	return c
}

// expected returns how many of n first tracks a uniform shuffle puts on number.
func (c catalogue) expected(number, n int) float64 {
	return float64(n) * float64(c.rows[number]) / float64(len(c.numbers))
}

// chiSquare returns Pearson's statistic for the observed first-track counts
// against a uniform shuffle over the catalogue's rows, with one category per
// distinct number; numbers never observed count as zero.
func chiSquare(counts map[int]int, c catalogue, n int) (float64, int) {
	k := len(c.byNumber)
	obs := make([]float64, 0, k)
	exp := make([]float64, 0, k)
	for number := range c.byNumber {
		obs = append(obs, float64(counts[number]))
		exp = append(exp, c.expected(number, n))
	}
	return stat.ChiSquare(obs, exp), k - 1
}

func positions(samples *model.SampleSet, byNumber map[int]model.Track, trueMean, trueStd float64) []Position {
	var out []Position
	for i := 0; i < samples.MaxLen(); i++ {
		var values []float64
		for _, n := range samples.Position(i) {
			if _, ok := byNumber[n]; ok {
				values = append(values, float64(n))
			}
		}
		if len(values) == 0 {
			continue
		}
		mean := stat.Mean(values, nil)
		out = append(out, Position{
			Index:  i,
			Count:  len(values),
			Mean:   mean,
			ZScore: zScore(mean, trueMean, trueStd/math.Sqrt(float64(len(values)))),
		})
	}
	return out
}

func mostFrequent(counts map[int]int, cat catalogue, samples int) []Frequency {
	out := make([]Frequency, 0, len(counts))
	for n, c := range counts {
		out = append(out, Frequency{Track: cat.byNumber[n], Count: c, Expected: cat.expected(n, samples)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Track.Number < out[j].Track.Number
	})
	if len(out) > TopN {
		out = out[:TopN]
	}
	return out
}

func zScore(mean, mu, se float64) float64 {
	if se == 0 {
		return 0
	}
	return (mean - mu) / se
}

func twoSided(z float64) float64 {
	return 2 * distuv.UnitNormal.Survival(math.Abs(z))
}
