package main

import (
	"math"

	"penney-bench/server/engine"
	"penney-bench/server/sweep"
)

// WilsonCI95 is the display interval around wins/total. Ties are not wins.
func WilsonCI95(wins, total int) (low, hi float64) {
	if total <= 0 {
		return 0, 1
	}
	z := 1.96
	n := float64(total)
	p := float64(wins) / n
	den := 1 + (z*z)/n
	center := p + (z*z)/(2*n)
	half := z * math.Sqrt((p*(1-p))/n+(z*z)/(4*n*n))
	return (center - half) / den, (center + half) / den
}

// Counter is player 2's strongest reply to one player 1 pattern.
type Counter struct {
	P1, P2  engine.Pattern
	Wins    int
	Ties    int
	Low, Hi float64
}

// bestCounters picks, for every player 1 pattern, the player 2 pattern with
// the most wins (ties break toward fewer ties, then pattern order).
func bestCounters(m *sweep.Matrix, decks int) []Counter {
	pats := engine.Patterns()
	out := make([]Counter, 0, len(pats))
	for i, p1 := range pats {
		best := -1
		for j := range pats {
			if i == j {
				continue
			}
			if best < 0 || better(m[i][j], m[i][best]) {
				best = j
			}
		}
		cell := m[i][best]
		lo, hi := WilsonCI95(cell.Wins, decks)
		out = append(out, Counter{
			P1: p1, P2: pats[best],
			Wins: cell.Wins, Ties: cell.Ties,
			Low: lo, Hi: hi,
		})
	}
	return out
}

func better(a, b sweep.Cell) bool {
	if a.Wins != b.Wins {
		return a.Wins > b.Wins
	}
	return a.Ties < b.Ties
}
