package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"github.com/VArrow2001/shuffle-audit/internal/model"
)

// ErrNoTracklist is returned by LoadTracklist when nothing has been cached yet.
var ErrNoTracklist = errors.New("no tracklist stored")

const schema = `
CREATE TABLE IF NOT EXISTS tracks (
	number  INTEGER NOT NULL,
	artists TEXT    NOT NULL,
	title   TEXT    NOT NULL,
	ord     INTEGER NOT NULL,
	PRIMARY KEY (number, artists, title)
);

CREATE TABLE IF NOT EXISTS passes (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pass_tracks (
	pass_id  INTEGER NOT NULL REFERENCES passes(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	number   INTEGER NOT NULL,
	PRIMARY KEY (pass_id, position)
);

CREATE INDEX IF NOT EXISTS idx_pass_tracks_position ON pass_tracks(position);
`

// Store persists the scraped tracklist and every recorded pass in SQLite.
//
// Each pass is committed in its own transaction as soon as it finishes, so an
// interrupted or crashed run loses at most the pass in progress.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on", path)
	}

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; also keeps ":memory:" on a single connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type trackRow struct {
	model.Track
	Ord int `db:"ord"`
}

// SaveTracklist replaces the stored tracklist.
func (s *Store) SaveTracklist(ctx context.Context, tl *model.Tracklist) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tracks`); err != nil {
		return fmt.Errorf("clear tracklist: %w", err)
	}
	for i, t := range tl.Tracks() {
		row := trackRow{Track: t, Ord: i}
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO tracks (number, artists, title, ord) VALUES (:number, :artists, :title, :ord)`, row); err != nil {
			return fmt.Errorf("insert track %d: %w", t.Number, err)
		}
	}
	return tx.Commit()
}

// LoadTracklist returns the stored tracklist in scrape order.
//
// Returns ErrNoTracklist if none has been saved.
func (s *Store) LoadTracklist(ctx context.Context) (*model.Tracklist, error) {
	var rows []trackRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT number, artists, title, ord FROM tracks ORDER BY ord`); err != nil {
		return nil, fmt.Errorf("load tracklist: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoTracklist
	}

	tl := model.NewTracklist()
	for _, r := range rows {
		tl.Add(r.Track)
	}
	return tl, nil
}

// AppendPass stores a finished pass and sets p.ID.
func (s *Store) AppendPass(ctx context.Context, p *model.Pass) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO passes (started_at, finished_at) VALUES (?, ?)`,
		toNanos(p.StartedAt), toNanos(p.FinishedAt))
	if err != nil {
		return fmt.Errorf("insert pass: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO pass_tracks (pass_id, position, number) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for pos, number := range p.Order {
		if _, err := stmt.ExecContext(ctx, id, pos, number); err != nil {
			return fmt.Errorf("insert pass track %d: %w", pos, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	p.ID = id
	return nil
}

type passRow struct {
	ID         int64 `db:"id"`
	StartedAt  int64 `db:"started_at"`
	FinishedAt int64 `db:"finished_at"`
}

type passTrackRow struct {
	PassID   int64 `db:"pass_id"`
	Position int   `db:"position"`
	Number   int   `db:"number"`
}

// LoadSamples returns every stored pass in insertion order.
func (s *Store) LoadSamples(ctx context.Context) (*model.SampleSet, error) {
	var passes []passRow
	if err := s.db.SelectContext(ctx, &passes, `SELECT id, started_at, finished_at FROM passes ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load passes: %w", err)
	}

	var tracks []passTrackRow
	if err := s.db.SelectContext(ctx, &tracks,
		`SELECT pass_id, position, number FROM pass_tracks ORDER BY pass_id, position`); err != nil {
		return nil, fmt.Errorf("load pass tracks: %w", err)
	}

	orders := make(map[int64][]int, len(passes))
	for _, t := range tracks {
		orders[t.PassID] = append(orders[t.PassID], t.Number)
	}

	set := &model.SampleSet{}
	for _, p := range passes {
		set.Add(model.Pass{
			ID:         p.ID,
			Order:      orders[p.ID],
			StartedAt:  fromNanos(p.StartedAt),
			FinishedAt: fromNanos(p.FinishedAt),
		})
	}
	return set, nil
}

// CountPasses returns the number of stored passes.
func (s *Store) CountPasses(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM passes`); err != nil {
		return 0, err
	}
	return n, nil
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}
