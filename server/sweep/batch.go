package sweep

import (
	"time"

	"penney-bench/server/engine"
)

// Source identifies one deck-generation call that fed a batch.
type Source struct {
	Seed  int64 `json:"seed"`
	Decks int   `json:"deck_count"`
}

// Batch is an immutable set of results over a known collection of decks.
// Merging produces a new Batch.
type Batch struct {
	ID        int64     `json:"id"`
	Seed      int64     `json:"seed"`
	HalfSize  int       `json:"half_size"`
	Decks     int       `json:"deck_count"`
	Sources   []Source  `json:"sources"`
	Tricks    Matrix    `json:"-"`
	Cards     Matrix    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBatch wraps an aggregation result over GenerateDecks(res.Decks, halfSize, seed).
func NewBatch(seed int64, halfSize int, res Result) Batch {
	return Batch{
		Seed:     seed,
		HalfSize: halfSize,
		Decks:    res.Decks,
		Sources:  []Source{{Seed: seed, Decks: res.Decks}},
		Tricks:   res.Tricks,
		Cards:    res.Cards,
	}
}

// Matrix returns the matrix for one mode.
func (b *Batch) Matrix(mode engine.Mode) *Matrix {
	if mode == engine.Cards {
		return &b.Cards
	}
	return &b.Tricks
}

// Merged reports whether the batch combines more than one generation call.
func (b *Batch) Merged() bool { return len(b.Sources) > 1 }
