// Package storetest holds the behaviour every ResultStore must share.
package storetest

import (
	"context"
	"errors"
	"testing"

	"penney-bench/server/engine"
	"penney-bench/server/errs"
	"penney-bench/server/store"
	"penney-bench/server/sweep"
)

// Opener returns a fresh, empty store. The suite closes it.
type Opener func(t *testing.T) store.ResultStore

// Generate builds a batch the way the simulate command does.
func Generate(t *testing.T, n, half int, seed int64) (sweep.Batch, []engine.Deck) {
	t.Helper()
	decks, err := engine.GenerateDecks(n, half, seed)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	res, err := sweep.Aggregate(context.Background(), decks, sweep.Options{Workers: 2})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	return sweep.NewBatch(seed, half, res), decks
}

// Run executes the conformance suite against stores produced by open.
func Run(t *testing.T, open Opener) {
	t.Run("round trip", func(t *testing.T) { roundTrip(t, open(t)) })
	t.Run("find newest", func(t *testing.T) { findNewest(t, open(t)) })
	t.Run("find skips merged", func(t *testing.T) { findSkipsMerged(t, open(t)) })
	t.Run("list", func(t *testing.T) { list(t, open(t)) })
	t.Run("merged without decks", func(t *testing.T) { mergedWithoutDecks(t, open(t)) })
	t.Run("not found", func(t *testing.T) { notFound(t, open(t)) })
	t.Run("rejects invalid", func(t *testing.T) { rejectsInvalid(t, open(t)) })
}

func roundTrip(t *testing.T, s store.ResultStore) {
	ctx := context.Background()
	defer s.Close(ctx)

	b, decks := Generate(t, 40, 4, 7)
	id, err := s.SaveBatch(ctx, b, decks)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.LoadBatch(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ID != id || got.Seed != 7 || got.HalfSize != 4 || got.Decks != 40 {
		t.Fatalf("header = %+v", got)
	}
	if len(got.Sources) != 1 || got.Sources[0] != (sweep.Source{Seed: 7, Decks: 40}) {
		t.Fatalf("sources = %+v", got.Sources)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("created_at not set")
	}
	if got.Tricks != b.Tricks || got.Cards != b.Cards {
		t.Fatalf("matrices differ after round trip")
	}

	stored, err := s.LoadDecks(ctx, id)
	if err != nil {
		t.Fatalf("decks: %v", err)
	}
	if len(stored) != len(decks) {
		t.Fatalf("decks = %d, want %d", len(stored), len(decks))
	}
	for i := range decks {
		if stored[i].String() != decks[i].String() {
			t.Fatalf("deck %d = %s, want %s", i, stored[i], decks[i])
		}
	}

	for _, mode := range engine.Modes {
		recs, err := s.Records(ctx, id, mode)
		if err != nil {
			t.Fatalf("records %s: %v", mode, err)
		}
		if len(recs) != 64 {
			t.Fatalf("records %s = %d, want 64", mode, len(recs))
		}
		want := b.Matrix(mode).Records()
		for i := range want {
			if recs[i] != want[i] {
				t.Fatalf("%s record %d = %+v, want %+v", mode, i, recs[i], want[i])
			}
		}
	}
}

func findNewest(t *testing.T, s store.ResultStore) {
	ctx := context.Background()
	defer s.Close(ctx)

	b, decks := Generate(t, 10, 3, 5)
	first, err := s.SaveBatch(ctx, b, decks)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := s.SaveBatch(ctx, b, decks)
	if err != nil {
		t.Fatalf("save again: %v", err)
	}
	if second <= first {
		t.Fatalf("ids not increasing: %d then %d", first, second)
	}
	got, err := s.FindBatch(ctx, 10, 5)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ID != second {
		t.Fatalf("find returned %d, want newest %d", got.ID, second)
	}
	if got.Tricks != b.Tricks {
		t.Fatalf("find returned wrong matrix")
	}
	if _, err := s.FindBatch(ctx, 11, 5); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("find other count: err = %v, want not found", err)
	}
}

func findSkipsMerged(t *testing.T, s store.ResultStore) {
	ctx := context.Background()
	defer s.Close(ctx)

	gen, decks := Generate(t, 20, 3, 1)
	genID, err := s.SaveBatch(ctx, gen, decks)
	if err != nil {
		t.Fatalf("save generated: %v", err)
	}
	a, _ := Generate(t, 10, 3, 1)
	b, _ := Generate(t, 10, 3, 2)
	m, err := sweep.Merge(a, b)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if m.Decks != gen.Decks || m.Seed != gen.Seed {
		t.Fatalf("merged batch should share the generated address")
	}
	if _, err := s.SaveBatch(ctx, m, nil); err != nil {
		t.Fatalf("save merged: %v", err)
	}

	got, err := s.FindBatch(ctx, 20, 1)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ID != genID || got.Merged() {
		t.Fatalf("find returned batch %d with sources %+v, want generated %d", got.ID, got.Sources, genID)
	}
	if got.Tricks != gen.Tricks {
		t.Fatalf("find returned results for different decks")
	}
	if _, err := s.FindBatch(ctx, 10, 2); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("find seed 2: err = %v, want not found", err)
	}
}

func list(t *testing.T, s store.ResultStore) {
	ctx := context.Background()
	defer s.Close(ctx)

	var ids []int64
	for seed := int64(1); seed <= 3; seed++ {
		b, decks := Generate(t, 5, 2, seed)
		id, err := s.SaveBatch(ctx, b, decks)
		if err != nil {
			t.Fatalf("save %d: %v", seed, err)
		}
		ids = append(ids, id)
	}
	all, err := s.ListBatches(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("list = %d batches, want 3", len(all))
	}
	if all[0].ID != ids[2] || all[2].ID != ids[0] {
		t.Fatalf("list not newest first: %d..%d", all[0].ID, all[2].ID)
	}
	if len(all[0].Sources) != 1 {
		t.Fatalf("list dropped sources")
	}
	two, err := s.ListBatches(ctx, 2)
	if err != nil {
		t.Fatalf("list 2: %v", err)
	}
	if len(two) != 2 {
		t.Fatalf("limit ignored: %d", len(two))
	}
}

func mergedWithoutDecks(t *testing.T, s store.ResultStore) {
	ctx := context.Background()
	defer s.Close(ctx)

	a, _ := Generate(t, 6, 3, 1)
	b, _ := Generate(t, 4, 3, 2)
	m, err := sweep.Merge(a, b)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	id, err := s.SaveBatch(ctx, m, nil)
	if err != nil {
		t.Fatalf("save merged: %v", err)
	}
	got, err := s.LoadBatch(ctx, id)
	if err != nil {
		t.Fatalf("load merged: %v", err)
	}
	if !got.Merged() || got.Decks != 10 || len(got.Sources) != 2 {
		t.Fatalf("merged header = %+v", got)
	}
	if got.Sources[0].Seed != 1 || got.Sources[1].Seed != 2 {
		t.Fatalf("source order = %+v", got.Sources)
	}
	if got.Cards != m.Cards {
		t.Fatalf("merged matrix differs")
	}
	if _, err := s.LoadDecks(ctx, id); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("merged decks: err = %v, want not found", err)
	}
}

func notFound(t *testing.T, s store.ResultStore) {
	ctx := context.Background()
	defer s.Close(ctx)

	if _, err := s.LoadBatch(ctx, 999); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("load: err = %v", err)
	}
	if _, err := s.Records(ctx, 999, engine.Tricks); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("records: err = %v", err)
	}
	if _, err := s.LoadDecks(ctx, 999); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("decks: err = %v", err)
	}
	if _, err := s.FindBatch(ctx, 1, 1); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("find: err = %v", err)
	}
	all, err := s.ListBatches(ctx, 10)
	if err != nil || len(all) != 0 {
		t.Fatalf("empty list = %v, %v", all, err)
	}
}

func rejectsInvalid(t *testing.T, s store.ResultStore) {
	ctx := context.Background()
	defer s.Close(ctx)

	b, decks := Generate(t, 5, 3, 9)
	cases := []struct {
		name  string
		b     sweep.Batch
		decks []engine.Deck
	}{
		{"deck count mismatch", b, decks[:4]},
		{"deck length mismatch", withHalf(b, 4), decks},
		{"no provenance", withoutSources(b), decks},
	}
	for _, tc := range cases {
		if _, err := s.SaveBatch(ctx, tc.b, tc.decks); !errors.Is(err, errs.ErrConfiguration) {
			t.Fatalf("%s: err = %v, want configuration error", tc.name, err)
		}
	}
	all, err := s.ListBatches(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("rejected saves left %d batches behind", len(all))
	}
}

func withHalf(b sweep.Batch, half int) sweep.Batch {
	b.HalfSize = half
	return b
}

func withoutSources(b sweep.Batch) sweep.Batch {
	b.Sources = nil
	return b
}
