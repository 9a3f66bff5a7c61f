package store

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"penney-bench/server/engine"
	"penney-bench/server/errs"
	"penney-bench/server/sweep"
)

//go:embed schema.sql
var schema embed.FS

// DB is the Postgres ResultStore.
type DB struct{ *pgxpool.Pool }

var _ ResultStore = (*DB)(nil)

func Open(dsn string) (*DB, error) {
	p, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, errs.Storage("open postgres", err)
	}
	return &DB{p}, nil
}

func (db *DB) Close(ctx context.Context)      { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return errs.Storage("migrate", err)
}

// SaveBatch writes the batch row, provenance, decks and 128 result records in
// one transaction.
func (db *DB) SaveBatch(ctx context.Context, b sweep.Batch, decks []engine.Deck) (int64, error) {
	if err := ValidateSave(b, decks); err != nil {
		return 0, err
	}
	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, errs.Storage("begin save", err)
	}
	defer tx.Rollback(ctx) // safe if already committed

	var id int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO batches(seed, half_size, deck_count)
		VALUES ($1,$2,$3)
		RETURNING id
	`, b.Seed, b.HalfSize, b.Decks).Scan(&id); err != nil {
		return 0, errs.Storage("insert batch", err)
	}

	batch := &pgx.Batch{}
	for i, s := range b.Sources {
		batch.Queue(`
			INSERT INTO batch_sources(batch_id, position, seed, deck_count)
			VALUES ($1,$2,$3,$4)
		`, id, i, s.Seed, s.Decks)
	}
	for _, mode := range engine.Modes {
		for _, r := range b.Matrix(mode).Records() {
			batch.Queue(`
				INSERT INTO results(batch_id, mode, player1, player2, win_count, tie_count)
				VALUES ($1,$2,$3,$4,$5,$6)
			`, id, string(mode), r.Player1, r.Player2, r.Wins, r.Ties)
		}
	}
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return 0, errs.Storage("insert results", err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, errs.Storage("insert results", err)
	}

	if decks != nil {
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"decks"},
			[]string{"batch_id", "idx", "symbols"},
			pgx.CopyFromSlice(len(decks), func(i int) ([]any, error) {
				return []any{id, i, decks[i].String()}, nil
			}),
		); err != nil {
			return 0, errs.Storage("copy decks", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, errs.Storage("commit save", err)
	}
	return id, nil
}

func (db *DB) LoadBatch(ctx context.Context, id int64) (sweep.Batch, error) {
	b, err := db.batchRow(ctx, id)
	if err != nil {
		return sweep.Batch{}, err
	}
	tricks, err := db.records(ctx, id, engine.Tricks)
	if err != nil {
		return sweep.Batch{}, err
	}
	cards, err := db.records(ctx, id, engine.Cards)
	if err != nil {
		return sweep.Batch{}, err
	}
	if err := Assemble(&b, tricks, cards); err != nil {
		return sweep.Batch{}, err
	}
	return b, nil
}

func (db *DB) FindBatch(ctx context.Context, deckCount int, seed int64) (sweep.Batch, error) {
	var id int64
	err := db.QueryRow(ctx, `
		SELECT b.id FROM batches b
		 WHERE b.deck_count = $1 AND b.seed = $2
		   AND (SELECT COUNT(*) FROM batch_sources s WHERE s.batch_id = b.id) = 1
		 ORDER BY b.id DESC
		 LIMIT 1
	`, deckCount, seed).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return sweep.Batch{}, errs.NotFoundf("no batch with %d decks and seed %d", deckCount, seed)
	}
	if err != nil {
		return sweep.Batch{}, errs.Storage("find batch", err)
	}
	return db.LoadBatch(ctx, id)
}

func (db *DB) ListBatches(ctx context.Context, limit int) ([]sweep.Batch, error) {
	rows, err := db.Query(ctx, `
		SELECT id, seed, half_size, deck_count, created_at
		  FROM batches
		 ORDER BY id DESC
		 LIMIT $1
	`, ClampLimit(limit))
	if err != nil {
		return nil, errs.Storage("list batches", err)
	}
	defer rows.Close()
	out := []sweep.Batch{}
	for rows.Next() {
		var b sweep.Batch
		if err := rows.Scan(&b.ID, &b.Seed, &b.HalfSize, &b.Decks, &b.CreatedAt); err != nil {
			return nil, errs.Storage("scan batch", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("list batches", err)
	}
	for i := range out {
		if out[i].Sources, err = db.sources(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (db *DB) LoadDecks(ctx context.Context, id int64) ([]engine.Deck, error) {
	b, err := db.batchRow(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, `SELECT symbols FROM decks WHERE batch_id = $1 ORDER BY idx`, id)
	if err != nil {
		return nil, errs.Storage("load decks", err)
	}
	defer rows.Close()
	out := make([]engine.Deck, 0, b.Decks)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, errs.Storage("scan deck", err)
		}
		d, err := engine.ParseDeck(s)
		if err != nil || len(d) != 2*b.HalfSize {
			return nil, errs.Storage(fmt.Sprintf("corrupt deck in batch %d", id), orLength(err, len(s)))
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

func (db *DB) Records(ctx context.Context, id int64, mode engine.Mode) ([]sweep.Record, error) {
	if _, err := db.batchRow(ctx, id); err != nil {
		return nil, err
	}
	return db.records(ctx, id, mode)
}

func (db *DB) batchRow(ctx context.Context, id int64) (sweep.Batch, error) {
	var b sweep.Batch
	err := db.QueryRow(ctx, `
		SELECT id, seed, half_size, deck_count, created_at
		  FROM batches WHERE id = $1
	`, id).Scan(&b.ID, &b.Seed, &b.HalfSize, &b.Decks, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return b, errs.NotFoundf("batch %d", id)
	}
	if err != nil {
		return b, errs.Storage("load batch", err)
	}
	if b.Sources, err = db.sources(ctx, id); err != nil {
		return b, err
	}
	return b, nil
}

func (db *DB) sources(ctx context.Context, id int64) ([]sweep.Source, error) {
	rows, err := db.Query(ctx, `
		SELECT seed, deck_count FROM batch_sources
		 WHERE batch_id = $1
		 ORDER BY position
	`, id)
	if err != nil {
		return nil, errs.Storage("load sources", err)
	}
	defer rows.Close()
	out := []sweep.Source{}
	for rows.Next() {
		var s sweep.Source
		if err := rows.Scan(&s.Seed, &s.Decks); err != nil {
			return nil, errs.Storage("scan source", err)
		}
		out = append(out, s)
	}
	return out, errs.Storage("load sources", rows.Err())
}

func (db *DB) records(ctx context.Context, id int64, mode engine.Mode) ([]sweep.Record, error) {
	rows, err := db.Query(ctx, `
		SELECT player1, player2, win_count, tie_count
		  FROM results
		 WHERE batch_id = $1 AND mode = $2
		 ORDER BY player1, player2
	`, id, string(mode))
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

func orLength(err error, n int) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("deck length %d", n)
}
