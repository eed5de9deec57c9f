package model

import "sort"

// Tracklist is the scraped catalogue of a playlist.
//
// Rows are unique: Add and Merge silently skip a row that is already present.
// The insertion order is preserved, which for a freshly scraped playlist is
// the order the rows appeared on the page.
//
// Example:
//
//	tl := NewTracklist()
//	tl.Add(NewTrack(1, []string{"A"}, "Song"))
//	tl.Merge(moreRows)
//	matches := tl.ByTitle("song")
type Tracklist struct {
	tracks  []Track
	seen    map[Track]struct{}
	byTitle map[string][]int
}

// NewTracklist creates an empty Tracklist, optionally seeded with rows.
func NewTracklist(tracks ...Track) *Tracklist {
	tl := &Tracklist{
		seen:    make(map[Track]struct{}),
		byTitle: make(map[string][]int),
	}
	tl.Merge(tracks)
	return tl
}

// Add appends a track unless an identical row is already present.
// It reports whether the row was new.
func (tl *Tracklist) Add(t Track) bool {
	if _, ok := tl.seen[t]; ok {
		return false
	}
	tl.seen[t] = struct{}{}
	key := NormalizeTitle(t.Title)
	tl.byTitle[key] = append(tl.byTitle[key], len(tl.tracks))
	tl.tracks = append(tl.tracks, t)
	return true
}

// Merge adds every row from tracks and returns how many were new.
func (tl *Tracklist) Merge(tracks []Track) int {
	added := 0
	for _, t := range tracks {
		if tl.Add(t) {
			added++
		}
	}
	return added
}

// Len returns the number of unique rows.
func (tl *Tracklist) Len() int {
	return len(tl.tracks)
}

// Tracks returns a copy of the rows in insertion order.
func (tl *Tracklist) Tracks() []Track {
	out := make([]Track, len(tl.tracks))
	copy(out, tl.tracks)
	return out
}

// Last returns the most recently added row.
func (tl *Tracklist) Last() (Track, bool) {
	if len(tl.tracks) == 0 {
		return Track{}, false
	}
	return tl.tracks[len(tl.tracks)-1], true
}

// ByTitle returns every row whose normalized title equals the normalized title given.
func (tl *Tracklist) ByTitle(title string) []Track {
	idx := tl.byTitle[NormalizeTitle(title)]
	out := make([]Track, 0, len(idx))
	for _, i := range idx {
		out = append(out, tl.tracks[i])
	}
	return out
}

// Numbers returns the sorted, distinct catalogue numbers.
func (tl *Tracklist) Numbers() []int {
	set := make(map[int]struct{}, len(tl.tracks))
	for _, t := range tl.tracks {
		set[t.Number] = struct{}{}
	}
	nums := make([]int, 0, len(set))
	for n := range set {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// Mean returns the mean catalogue number, or 0 for an empty list.
//
// A uniform shuffle's first-track mean converges to this value.
func (tl *Tracklist) Mean() float64 {
	if len(tl.tracks) == 0 {
		return 0
	}
	var sum float64
	for _, t := range tl.tracks {
		sum += float64(t.Number)
	}
	return sum / float64(len(tl.tracks))
}

// FilterArtists narrows candidates to rows whose Artists equal artists exactly.
func FilterArtists(candidates []Track, artists string) []Track {
	var out []Track
	for _, t := range candidates {
		if t.Artists == artists {
			out = append(out, t)
		}
	}
	return out
}
