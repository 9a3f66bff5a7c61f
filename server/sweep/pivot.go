package sweep

import (
	"github.com/shopspring/decimal"

	"penney-bench/server/engine"
)

// PercentPlaces is the rounding used for displayed rates.
const PercentPlaces = 4

// Rate is count/decks rounded for display. Counts stay canonical; rates are
// never stored or merged.
func Rate(count, decks int) decimal.Decimal {
	if decks <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(count)).
		Div(decimal.NewFromInt(int64(decks))).
		Round(PercentPlaces)
}

// Table is a matrix pivoted for display: rows are player 1's pattern,
// columns player 2's. Diagonal cells are nil.
type Table struct {
	BatchID int64                `json:"batch_id"`
	Mode    engine.Mode          `json:"mode"`
	Decks   int                  `json:"deck_count"`
	Rows    []string             `json:"rows"`
	Cols    []string             `json:"cols"`
	Wins    [][]*int             `json:"wins"`
	Ties    [][]*int             `json:"ties"`
	WinRate [][]*decimal.Decimal `json:"win_rate"`
	TieRate [][]*decimal.Decimal `json:"tie_rate"`
}

// Pivot builds the display table for one mode of a batch.
func Pivot(b *Batch, mode engine.Mode) Table {
	labels := make([]string, 0, size)
	for _, p := range engine.Patterns() {
		labels = append(labels, p.String())
	}
	t := Table{
		BatchID: b.ID,
		Mode:    mode,
		Decks:   b.Decks,
		Rows:    labels,
		Cols:    labels,
		Wins:    make([][]*int, size),
		Ties:    make([][]*int, size),
		WinRate: make([][]*decimal.Decimal, size),
		TieRate: make([][]*decimal.Decimal, size),
	}
	m := b.Matrix(mode)
	for i := 0; i < size; i++ {
		t.Wins[i] = make([]*int, size)
		t.Ties[i] = make([]*int, size)
		t.WinRate[i] = make([]*decimal.Decimal, size)
		t.TieRate[i] = make([]*decimal.Decimal, size)
		for j := 0; j < size; j++ {
			if i == j {
				continue
			}
			c := m[i][j]
			wins, ties := c.Wins, c.Ties
			wr, tr := Rate(wins, b.Decks), Rate(ties, b.Decks)
			t.Wins[i][j] = &wins
			t.Ties[i][j] = &ties
			t.WinRate[i][j] = &wr
			t.TieRate[i][j] = &tr
		}
	}
	return t
}
