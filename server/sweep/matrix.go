// Package sweep runs every choice pair over a batch of decks and keeps the
// win/tie counts per scoring mode.
package sweep

import (
	"fmt"

	"penney-bench/server/engine"
)

const size = engine.NumPatterns

// Cell counts player 2's outcomes for one choice pair.
type Cell struct {
	Wins int `json:"win_count"`
	Ties int `json:"tie_count"`
}

// Losses is the remainder of a batch of decks.
func (c Cell) Losses(decks int) int { return decks - c.Wins - c.Ties }

// Matrix is indexed [player1][player2] in engine.Patterns() order.
// The diagonal is always zero.
type Matrix [size][size]Cell

// At returns the cell for a pattern pair.
func (m *Matrix) At(p1, p2 engine.Pattern) Cell {
	return m[engine.PatternIndex(p1)][engine.PatternIndex(p2)]
}

// Add sums o into m cell by cell.
func (m *Matrix) Add(o *Matrix) {
	for i := range m {
		for j := range m[i] {
			m[i][j].Wins += o[i][j].Wins
			m[i][j].Ties += o[i][j].Ties
		}
	}
}

// Record is the persisted, flat form of one cell.
type Record struct {
	Player1 string `json:"player1_pattern"`
	Player2 string `json:"player2_pattern"`
	Wins    int    `json:"win_count"`
	Ties    int    `json:"tie_count"`
}

// Records flattens m into 64 records, row-major.
func (m *Matrix) Records() []Record {
	out := make([]Record, 0, size*size)
	for _, cp := range engine.ChoicePairs() {
		c := m[cp.I][cp.J]
		out = append(out, Record{Player1: cp.P1.String(), Player2: cp.P2.String(), Wins: c.Wins, Ties: c.Ties})
	}
	return out
}

// MatrixFromRecords rebuilds a matrix and insists on exactly one record for
// each of the 64 pairs.
func MatrixFromRecords(records []Record) (Matrix, error) {
	var m Matrix
	var seen [size][size]bool
	for _, r := range records {
		p1, err := engine.ParsePattern(r.Player1)
		if err != nil {
			return m, err
		}
		p2, err := engine.ParsePattern(r.Player2)
		if err != nil {
			return m, err
		}
		i, j := engine.PatternIndex(p1), engine.PatternIndex(p2)
		if seen[i][j] {
			return m, fmt.Errorf("duplicate record %s/%s", p1, p2)
		}
		if r.Wins < 0 || r.Ties < 0 {
			return m, fmt.Errorf("negative count in %s/%s", p1, p2)
		}
		if i == j && (r.Wins != 0 || r.Ties != 0) {
			return m, fmt.Errorf("non-zero diagonal %s/%s", p1, p2)
		}
		seen[i][j] = true
		m[i][j] = Cell{Wins: r.Wins, Ties: r.Ties}
	}
	if len(records) != size*size {
		return m, fmt.Errorf("got %d records, want %d", len(records), size*size)
	}
	return m, nil
}

// Result is one aggregation run: a matrix per scoring mode.
type Result struct {
	Decks  int
	Tricks Matrix
	Cards  Matrix
}

// Matrix returns the matrix for one mode.
func (r *Result) Matrix(mode engine.Mode) *Matrix {
	if mode == engine.Cards {
		return &r.Cards
	}
	return &r.Tricks
}
