// Package store persists decks and result matrices.
package store

import (
	"context"
	"fmt"

	"penney-bench/server/engine"
	"penney-bench/server/errs"
	"penney-bench/server/sweep"
)

// ResultStore saves and retrieves simulation batches. Saves are atomic: a
// failed save leaves nothing behind.
type ResultStore interface {
	// SaveBatch stores b and, when non-nil, the decks it was computed from.
	// Merged batches are saved without decks. It returns the new batch id.
	SaveBatch(ctx context.Context, b sweep.Batch, decks []engine.Deck) (int64, error)
	LoadBatch(ctx context.Context, id int64) (sweep.Batch, error)
	// FindBatch returns the newest generated batch with this deck count and
	// seed. Merged batches are never matched.
	FindBatch(ctx context.Context, deckCount int, seed int64) (sweep.Batch, error)
	// ListBatches returns the newest batches, without their matrices.
	ListBatches(ctx context.Context, limit int) ([]sweep.Batch, error)
	LoadDecks(ctx context.Context, id int64) ([]engine.Deck, error)
	Records(ctx context.Context, id int64, mode engine.Mode) ([]sweep.Record, error)
	Close(ctx context.Context)
}

// DefaultListLimit caps ListBatches when the caller passes 0.
const DefaultListLimit = 200

// ValidateSave checks a batch before any write.
func ValidateSave(b sweep.Batch, decks []engine.Deck) error {
	if b.HalfSize <= 0 {
		return errs.Configurationf("half_size must be > 0, got %d", b.HalfSize)
	}
	if b.Decks <= 0 {
		return errs.Configurationf("deck count must be > 0, got %d", b.Decks)
	}
	if len(b.Sources) == 0 {
		return errs.Configurationf("batch has no provenance")
	}
	if decks == nil {
		return nil
	}
	if len(decks) != b.Decks {
		return errs.Configurationf("batch covers %d decks, got %d", b.Decks, len(decks))
	}
	for i, d := range decks {
		if len(d) != 2*b.HalfSize {
			return errs.Configurationf("deck %d has length %d, want %d", i, len(d), 2*b.HalfSize)
		}
	}
	return nil
}

// Assemble fills b's matrices from stored records.
func Assemble(b *sweep.Batch, tricks, cards []sweep.Record) error {
	var err error
	if b.Tricks, err = sweep.MatrixFromRecords(tricks); err != nil {
		return errs.Storage(fmt.Sprintf("corrupt tricks records for batch %d", b.ID), err)
	}
	if b.Cards, err = sweep.MatrixFromRecords(cards); err != nil {
		return errs.Storage(fmt.Sprintf("corrupt cards records for batch %d", b.ID), err)
	}
	return nil
}

// ClampLimit applies DefaultListLimit.
func ClampLimit(limit int) int {
	if limit <= 0 || limit > DefaultListLimit {
		return DefaultListLimit
	}
	return limit
}
