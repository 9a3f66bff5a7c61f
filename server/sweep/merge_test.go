package sweep

import (
	"context"
	"errors"
	"testing"

	"penney-bench/server/engine"
	"penney-bench/server/errs"
)

func batchOf(t *testing.T, count, half int, seed int64) (Batch, []engine.Deck) {
	t.Helper()
	decks := genDecks(t, count, half, seed)
	res, err := Aggregate(context.Background(), decks, Options{})
	if err != nil {
		t.Fatal(err)
	}
	return NewBatch(seed, half, res), decks
}

func TestMergeEqualsAggregateOfConcatenation(t *testing.T) {
	a, decksA := batchOf(t, 30, 10, 1)
	b, decksB := batchOf(t, 20, 10, 2)

	merged, err := Merge(a, b)
	if err != nil {
		t.Fatal(err)
	}
	all := append(append([]engine.Deck{}, decksA...), decksB...)
	want, err := Aggregate(context.Background(), all, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if merged.Decks != 50 {
		t.Fatalf("decks = %d, want 50", merged.Decks)
	}
	if merged.Tricks != want.Tricks || merged.Cards != want.Cards {
		t.Fatalf("merged matrices differ from a single aggregation")
	}
	if len(merged.Sources) != 2 || merged.Seed != 1 {
		t.Fatalf("unexpected provenance %+v seed %d", merged.Sources, merged.Seed)
	}
	if !merged.Merged() || a.Merged() {
		t.Fatalf("Merged() flag wrong")
	}
}

func TestMergeChainsAndLeavesInputsAlone(t *testing.T) {
	a, _ := batchOf(t, 10, 5, 1)
	b, _ := batchOf(t, 10, 5, 2)
	c, _ := batchOf(t, 10, 5, 3)
	before := a.Tricks

	ab, err := Merge(a, b)
	if err != nil {
		t.Fatal(err)
	}
	abc, err := Merge(ab, c)
	if err != nil {
		t.Fatal(err)
	}
	if a.Tricks != before {
		t.Fatalf("Merge mutated its input")
	}
	if abc.Decks != 30 || len(abc.Sources) != 3 {
		t.Fatalf("got %d decks from %d sources", abc.Decks, len(abc.Sources))
	}
	if _, err := Merge(abc, b); !errors.Is(err, errs.ErrSchema) {
		t.Fatalf("re-merging seed 2 err = %v, want schema error", err)
	}
}

func TestMergeRejects(t *testing.T) {
	a, _ := batchOf(t, 10, 5, 1)
	other, _ := batchOf(t, 10, 6, 2)
	sameSeed, _ := batchOf(t, 15, 5, 1)
	noSource := a
	noSource.Sources = nil
	lying := a
	lying.Seed, lying.Sources = 9, []Source{{Seed: 9, Decks: 3}}

	tests := []struct {
		name string
		a, b Batch
	}{
		{"half size mismatch", a, other},
		{"overlapping seed", a, sameSeed},
		{"missing provenance", a, noSource},
		{"count disagrees with provenance", a, lying},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Merge(tt.a, tt.b); !errors.Is(err, errs.ErrSchema) {
				t.Fatalf("err = %v, want schema error", err)
			}
		})
	}
}
