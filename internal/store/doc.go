// Package store persists the scraped tracklist and recorded shuffle passes
// in a SQLite database.
//
//	s, err := store.Open(ctx, "/path/to/samples.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	tl, err := s.LoadTracklist(ctx)
//	if errors.Is(err, store.ErrNoTracklist) {
//	    // scrape it, then s.SaveTracklist(ctx, tl)
//	}
//
//	err = s.AppendPass(ctx, &model.Pass{Order: order})
//	set, err := s.LoadSamples(ctx)
package store
