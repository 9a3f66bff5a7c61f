// Package sqlite provides a SQLite-backed result store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"penney-bench/server/engine"
	"penney-bench/server/errs"
	"penney-bench/server/store"
	"penney-bench/server/store/sqlite/migrations"
	"penney-bench/server/sweep"
)

// Store persists batches in a single SQLite file.
type Store struct {
	sqlDB *sql.DB
}

var _ store.ResultStore = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens (creating if needed) a SQLite store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errs.Configurationf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errs.Storage("create storage dir", err)
		}
	}
	dsn := cleanPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.Storage("open sqlite db", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, errs.Storage("ping sqlite db", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, errs.Storage("run migrations", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close(ctx context.Context) {
	if s == nil || s.sqlDB == nil {
		return
	}
	_ = s.sqlDB.Close()
}

// SaveBatch writes everything about one batch in a single transaction.
func (s *Store) SaveBatch(ctx context.Context, b sweep.Batch, decks []engine.Deck) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := store.ValidateSave(b, decks); err != nil {
		return 0, err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, errs.Storage("begin save", err)
	}
	defer tx.Rollback() // no-op after commit

	res, err := tx.ExecContext(ctx,
		`INSERT INTO batches (seed, half_size, deck_count, created_at) VALUES (?, ?, ?, ?)`,
		b.Seed, b.HalfSize, b.Decks, toMillis(time.Now()),
	)
	if err != nil {
		return 0, errs.Storage("insert batch", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errs.Storage("insert batch", err)
	}

	for i, src := range b.Sources {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO batch_sources (batch_id, position, seed, deck_count) VALUES (?, ?, ?, ?)`,
			id, i, src.Seed, src.Decks,
		); err != nil {
			return 0, errs.Storage("insert source", err)
		}
	}

	recStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (batch_id, mode, player1, player2, win_count, tie_count) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, errs.Storage("prepare results", err)
	}
	defer recStmt.Close()
	for _, mode := range engine.Modes {
		for _, r := range b.Matrix(mode).Records() {
			if _, err := recStmt.ExecContext(ctx, id, string(mode), r.Player1, r.Player2, r.Wins, r.Ties); err != nil {
				return 0, errs.Storage("insert result", err)
			}
		}
	}

	if decks != nil {
		deckStmt, err := tx.PrepareContext(ctx, `INSERT INTO decks (batch_id, idx, symbols) VALUES (?, ?, ?)`)
		if err != nil {
			return 0, errs.Storage("prepare decks", err)
		}
		defer deckStmt.Close()
		for i, d := range decks {
			if _, err := deckStmt.ExecContext(ctx, id, i, d.String()); err != nil {
				return 0, errs.Storage("insert deck", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errs.Storage("commit save", err)
	}
	return id, nil
}

// LoadBatch returns one batch with both matrices.
func (s *Store) LoadBatch(ctx context.Context, id int64) (sweep.Batch, error) {
	b, err := s.batchRow(ctx, id)
	if err != nil {
		return sweep.Batch{}, err
	}
	tricks, err := s.records(ctx, id, engine.Tricks)
	if err != nil {
		return sweep.Batch{}, err
	}
	cards, err := s.records(ctx, id, engine.Cards)
	if err != nil {
		return sweep.Batch{}, err
	}
	if err := store.Assemble(&b, tricks, cards); err != nil {
		return sweep.Batch{}, err
	}
	return b, nil
}

// FindBatch returns the newest generated (unmerged) batch for (deckCount, seed).
func (s *Store) FindBatch(ctx context.Context, deckCount int, seed int64) (sweep.Batch, error) {
	var id int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT b.id FROM batches b
		  WHERE b.deck_count = ? AND b.seed = ?
		    AND (SELECT COUNT(*) FROM batch_sources s WHERE s.batch_id = b.id) = 1
		  ORDER BY b.id DESC LIMIT 1`,
		deckCount, seed,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return sweep.Batch{}, errs.NotFoundf("no batch with %d decks and seed %d", deckCount, seed)
	}
	if err != nil {
		return sweep.Batch{}, errs.Storage("find batch", err)
	}
	return s.LoadBatch(ctx, id)
}

// ListBatches returns batch headers, newest first.
func (s *Store) ListBatches(ctx context.Context, limit int) ([]sweep.Batch, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, seed, half_size, deck_count, created_at FROM batches ORDER BY id DESC LIMIT ?`,
		store.ClampLimit(limit),
	)
	if err != nil {
		return nil, errs.Storage("list batches", err)
	}
	out := []sweep.Batch{}
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			rows.Close()
			return nil, errs.Storage("scan batch", err)
		}
		out = append(out, b)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, errs.Storage("list batches", err)
	}
	for i := range out {
		if out[i].Sources, err = s.sources(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// LoadDecks returns the decks a generated batch was computed from.
func (s *Store) LoadDecks(ctx context.Context, id int64) ([]engine.Deck, error) {
	b, err := s.batchRow(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT symbols FROM decks WHERE batch_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, errs.Storage("load decks", err)
	}
	defer rows.Close()
	out := make([]engine.Deck, 0, b.Decks)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, errs.Storage("scan deck", err)
		}
		d, err := engine.ParseDeck(raw)
		if err == nil && len(d) != 2*b.HalfSize {
			err = fmt.Errorf("deck length %d", len(d))
		}
		if err != nil {
			return nil, errs.Storage(fmt.Sprintf("corrupt deck in batch %d", id), err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("load decks", err)
	}
	if len(out) == 0 {
		return nil, errs.NotFoundf("batch %d has no stored decks", id)
	}
	if len(out) != b.Decks {
		return nil, errs.Storage(fmt.Sprintf("corrupt batch %d", id), fmt.Errorf("%d decks stored, want %d", len(out), b.Decks))
	}
	return out, nil
}

// Records returns the 64 flat records of one mode.
func (s *Store) Records(ctx context.Context, id int64, mode engine.Mode) ([]sweep.Record, error) {
	if _, err := s.batchRow(ctx, id); err != nil {
		return nil, err
	}
	return s.records(ctx, id, mode)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBatch(row scanner) (sweep.Batch, error) {
	var b sweep.Batch
	var created int64
	if err := row.Scan(&b.ID, &b.Seed, &b.HalfSize, &b.Decks, &created); err != nil {
		return b, err
	}
	b.CreatedAt = fromMillis(created)
	return b, nil
}

func (s *Store) batchRow(ctx context.Context, id int64) (sweep.Batch, error) {
	b, err := scanBatch(s.sqlDB.QueryRowContext(ctx,
		`SELECT id, seed, half_size, deck_count, created_at FROM batches WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return b, errs.NotFoundf("batch %d", id)
	}
	if err != nil {
		return b, errs.Storage("load batch", err)
	}
	if b.Sources, err = s.sources(ctx, id); err != nil {
		return b, err
	}
	return b, nil
}

func (s *Store) sources(ctx context.Context, id int64) ([]sweep.Source, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT seed, deck_count FROM batch_sources WHERE batch_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, errs.Storage("load sources", err)
	}
	defer rows.Close()
	out := []sweep.Source{}
	for rows.Next() {
		var src sweep.Source
		if err := rows.Scan(&src.Seed, &src.Decks); err != nil {
			return nil, errs.Storage("scan source", err)
		}
		out = append(out, src)
	}
	return out, errs.Storage("load sources", rows.Err())
}

func (s *Store) records(ctx context.Context, id int64, mode engine.Mode) ([]sweep.Record, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT player1, player2, win_count, tie_count FROM results
		  WHERE batch_id = ? AND mode = ?
		  ORDER BY player1, player2`, id, string(mode))
	if err != nil {
		return nil, errs.Storage("load records", err)
	}
	defer rows.Close()
	out := []sweep.Record{}
	for rows.Next() {
		var r sweep.Record
		if err := rows.Scan(&r.Player1, &r.Player2, &r.Wins, &r.Ties); err != nil {
			return nil, errs.Storage("scan record", err)
		}
		out = append(out, r)
	}
	return out, errs.Storage("load records", rows.Err())
}
