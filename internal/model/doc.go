// Package model defines the core data structures used throughout
// shuffle-audit.
//
// # Track
//
// Track is one scraped playlist row:
//
//	track := model.NewTrack(42, []string{"Artist"}, "Title")
//	fmt.Println(track) // "Artist - Title"
//
// # Tracklist
//
// Tracklist is the deduplicated catalogue used to resolve "now playing"
// text back to a catalogue number:
//
//	tl := model.NewTracklist(rows...)
//	candidates := tl.ByTitle("title")
//	trueMean := tl.Mean()
//
// # Samples
//
// A Pass records one shuffled play-through; a SampleSet accumulates them:
//
//	var set model.SampleSet
//	set.Add(model.Pass{Order: []int{17, 3, 42}})
//	fmt.Println(set.FirstTrackMean())
package model
