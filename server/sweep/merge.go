package sweep

import (
	"penney-bench/server/errs"
)

// Merge combines two batches over disjoint decks. Counts are summed, so the
// result equals one aggregation over both deck collections.
//
// Decks are identified by their generation seed: deck i of a seed is the same
// deck whatever the count, so two batches sharing a seed overlap.
func Merge(a, b Batch) (Batch, error) {
	if a.HalfSize != b.HalfSize {
		return Batch{}, errs.Schemaf("half_size %d != %d", a.HalfSize, b.HalfSize)
	}
	if len(a.Sources) == 0 || len(b.Sources) == 0 {
		return Batch{}, errs.Schemaf("batch without provenance cannot be merged")
	}
	seeds := make(map[int64]struct{}, len(a.Sources))
	for _, s := range a.Sources {
		seeds[s.Seed] = struct{}{}
	}
	for _, s := range b.Sources {
		if _, ok := seeds[s.Seed]; ok {
			return Batch{}, errs.Schemaf("both batches contain decks from seed %d", s.Seed)
		}
	}
	if sum(a.Sources) != a.Decks || sum(b.Sources) != b.Decks {
		return Batch{}, errs.Schemaf("deck count does not match provenance")
	}

	out := Batch{
		Seed:     a.Seed,
		HalfSize: a.HalfSize,
		Decks:    a.Decks + b.Decks,
		Sources:  make([]Source, 0, len(a.Sources)+len(b.Sources)),
		Tricks:   a.Tricks,
		Cards:    a.Cards,
	}
	out.Sources = append(out.Sources, a.Sources...)
	out.Sources = append(out.Sources, b.Sources...)
	out.Tricks.Add(&b.Tricks)
	out.Cards.Add(&b.Cards)
	return out, nil
}

func sum(sources []Source) int {
	total := 0
	for _, s := range sources {
		total += s.Decks
	}
	return total
}
