package model

import "time"

// Pass is one shuffle-and-play run: the catalogue numbers in the order the
// player reached them.
type Pass struct {
	// ID is the storage identifier; zero until the pass is persisted.
	ID int64

	// Order holds catalogue numbers, first played first.
	Order []int

	StartedAt  time.Time
	FinishedAt time.Time
}

// First returns the first track played, if any.
func (p Pass) First() (int, bool) {
	if len(p.Order) == 0 {
		return 0, false
	}
	return p.Order[0], true
}

// SampleSet accumulates passes across runs.
type SampleSet struct {
	Passes []Pass
}

// Add appends a pass.
func (s *SampleSet) Add(p Pass) {
	s.Passes = append(s.Passes, p)
}

// Len returns the number of passes.
func (s *SampleSet) Len() int {
	return len(s.Passes)
}

// FirstTracks returns the first catalogue number of every non-empty pass.
func (s *SampleSet) FirstTracks() []int {
	out := make([]int, 0, len(s.Passes))
	for _, p := range s.Passes {
		if n, ok := p.First(); ok {
			out = append(out, n)
		}
	}
	return out
}

// FirstTrackMean returns the mean first track, or 0 with no samples.
func (s *SampleSet) FirstTrackMean() float64 {
	firsts := s.FirstTracks()
	if len(firsts) == 0 {
		return 0
	}
	var sum float64
	for _, n := range firsts {
		sum += float64(n)
	}
	return sum / float64(len(firsts))
}

// Position returns the catalogue numbers recorded at the zero-based position
// i across every pass long enough to have one.
func (s *SampleSet) Position(i int) []int {
	var out []int
	for _, p := range s.Passes {
		if i < len(p.Order) {
			out = append(out, p.Order[i])
		}
	}
	return out
}

// MaxLen returns the length of the longest pass.
func (s *SampleSet) MaxLen() int {
	max := 0
	for _, p := range s.Passes {
		if len(p.Order) > max {
			max = len(p.Order)
		}
	}
	return max
}
