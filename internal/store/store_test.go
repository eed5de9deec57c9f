package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/VArrow2001/shuffle-audit/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTracklistRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, err := s.LoadTracklist(ctx); !errors.Is(err, ErrNoTracklist) {
		t.Fatalf("LoadTracklist() on empty store error = %v, want ErrNoTracklist", err)
	}

	want := []model.Track{
		{Number: 30, Artists: "C", Title: "Third"},
		{Number: 10, Artists: "A", Title: "First"},
		{Number: 20, Artists: "B; D", Title: "Second"},
	}
	if err := s.SaveTracklist(ctx, model.NewTracklist(want...)); err != nil {
		t.Fatalf("SaveTracklist() error: %v", err)
	}

	got, err := s.LoadTracklist(ctx)
	if err != nil {
		t.Fatalf("LoadTracklist() error: %v", err)
	}
	if diff := cmp.Diff(want, got.Tracks()); diff != "" {
		t.Errorf("tracklist mismatch (-want +got):\n%s", diff)
	}

	// Saving again replaces rather than appends.
	if err := s.SaveTracklist(ctx, model.NewTracklist(want[:1]...)); err != nil {
		t.Fatalf("second SaveTracklist() error: %v", err)
	}
	got, err = s.LoadTracklist(ctx)
	if err != nil {
		t.Fatalf("LoadTracklist() error: %v", err)
	}
	if got.Len() != 1 {
		t.Errorf("Len() after replace = %d, want 1", got.Len())
	}
}

func TestPasses(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	passes := []*model.Pass{
		{Order: []int{3, 1, 2}, StartedAt: start, FinishedAt: start.Add(time.Minute)},
		{Order: []int{2, 3, 1}, StartedAt: start.Add(2 * time.Minute), FinishedAt: start.Add(3 * time.Minute)},
	}
	for _, p := range passes {
		if err := s.AppendPass(ctx, p); err != nil {
			t.Fatalf("AppendPass() error: %v", err)
		}
		if p.ID == 0 {
			t.Error("AppendPass() did not set ID")
		}
	}

	n, err := s.CountPasses(ctx)
	if err != nil {
		t.Fatalf("CountPasses() error: %v", err)
	}
	if n != 2 {
		t.Errorf("CountPasses() = %d, want 2", n)
	}

	set, err := s.LoadSamples(ctx)
	if err != nil {
		t.Fatalf("LoadSamples() error: %v", err)
	}
	if diff := cmp.Diff([]int{3, 2}, set.FirstTracks()); diff != "" {
		t.Errorf("FirstTracks() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 3, 1}, set.Passes[1].Order); diff != "" {
		t.Errorf("second pass order mismatch (-want +got):\n%s", diff)
	}
	if !set.Passes[0].StartedAt.Equal(start) {
		t.Errorf("StartedAt = %v, want %v", set.Passes[0].StartedAt, start)
	}
}

func TestOpen_FileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "samples.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := s.AppendPass(ctx, &model.Pass{Order: []int{1}}); err != nil {
		t.Fatalf("AppendPass() error: %v", err)
	}
	s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s.Close()

	n, err := s.CountPasses(ctx)
	if err != nil {
		t.Fatalf("CountPasses() error: %v", err)
	}
	if n != 1 {
		t.Errorf("CountPasses() after reopen = %d, want 1", n)
	}
}
