package store

import (
	"errors"
	"testing"

	"penney-bench/server/errs"
	"penney-bench/server/sweep"
)

func TestClampLimit(t *testing.T) {
	cases := map[int]int{0: DefaultListLimit, -3: DefaultListLimit, 5: 5, DefaultListLimit + 1: DefaultListLimit}
	for in, want := range cases {
		if got := ClampLimit(in); got != want {
			t.Fatalf("ClampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestAssembleRejectsShortRecords(t *testing.T) {
	var m sweep.Matrix
	recs := m.Records()
	b := sweep.Batch{ID: 4}
	if err := Assemble(&b, recs, recs[:63]); !errors.Is(err, errs.ErrStorage) {
		t.Fatalf("err = %v, want storage error", err)
	}
	if err := Assemble(&b, recs, recs); err != nil {
		t.Fatalf("full records: %v", err)
	}
}

func TestValidateSaveMergedNeedsNoDecks(t *testing.T) {
	b := sweep.Batch{HalfSize: 3, Decks: 10, Sources: []sweep.Source{{Seed: 1, Decks: 4}, {Seed: 2, Decks: 6}}}
	if err := ValidateSave(b, nil); err != nil {
		t.Fatalf("merged batch: %v", err)
	}
	b.HalfSize = 0
	if err := ValidateSave(b, nil); !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
}
