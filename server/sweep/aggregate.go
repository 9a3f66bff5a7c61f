package sweep

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"penney-bench/server/engine"
	"penney-bench/server/errs"
)

// Options tunes an aggregation run.
type Options struct {
	// Workers caps concurrent pair tasks. 0 means runtime.NumCPU().
	Workers int
	// Progress is called after each pair task, possibly from several
	// goroutines at once.
	Progress func(done, total int)
}

// ScoredPairs is the number of non-degenerate choice pairs.
const ScoredPairs = size*size - size

// Aggregate scores every non-degenerate choice pair over every deck, one task
// per pair. Each task owns its two cells, so no locking is needed. If ctx is
// cancelled the run stops between tasks and no partial result is returned.
func Aggregate(ctx context.Context, decks []engine.Deck, opts Options) (Result, error) {
	if len(decks) == 0 {
		return Result{}, errs.Configurationf("aggregate needs at least one deck")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	res := Result{Decks: len(decks)}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	var done atomic.Int64

	for _, cp := range engine.ChoicePairs() {
		if cp.Degenerate() {
			continue
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tricks, cards := tallyPair(decks, cp.P1, cp.P2)
			res.Tricks[cp.I][cp.J] = tricks
			res.Cards[cp.I][cp.J] = cards
			if opts.Progress != nil {
				opts.Progress(int(done.Add(1)), ScoredPairs)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return res, nil
}

// AggregateMode is Aggregate for a single scoring mode.
func AggregateMode(ctx context.Context, decks []engine.Deck, mode engine.Mode, opts Options) (Matrix, error) {
	res, err := Aggregate(ctx, decks, opts)
	if err != nil {
		return Matrix{}, err
	}
	return *res.Matrix(mode), nil
}

// tallyPair plays p1 against p2 on every deck; player 2 wins on a strictly
// higher score.
func tallyPair(decks []engine.Deck, p1, p2 engine.Pattern) (tricks, cards Cell) {
	for _, d := range decks {
		s := engine.ScoreDeck(d, p1, p2)
		tally(&tricks, s.Tricks)
		tally(&cards, s.Cards)
	}
	return tricks, cards
}

func tally(c *Cell, p engine.Pair) {
	switch {
	case p.P2 > p.P1:
		c.Wins++
	case p.P2 == p.P1:
		c.Ties++
	}
}
