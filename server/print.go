package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"penney-bench/server/engine"
	"penney-bench/server/sweep"
)

var hundred = decimal.NewFromInt(100)

func printBatch(b *sweep.Batch, modes []engine.Mode) {
	title := fmt.Sprintf("batch %d · %d decks · half %d · seed %d", b.ID, b.Decks, b.HalfSize, b.Seed)
	if b.ID == 0 {
		title = fmt.Sprintf("unsaved · %d decks · half %d · seed %d", b.Decks, b.HalfSize, b.Seed)
	}
	section(title)
	if b.Merged() {
		parts := make([]string, 0, len(b.Sources))
		for _, s := range b.Sources {
			parts = append(parts, fmt.Sprintf("seed %d×%d", s.Seed, s.Decks))
		}
		fmt.Println(dim("  merged from " + strings.Join(parts, ", ")))
	}
	for _, mode := range modes {
		t := sweep.Pivot(b, mode)
		fmt.Println()
		sub(fmt.Sprintf("%s: player 2 win %% (tie %%)", mode))
		for _, line := range tableLines(t) {
			fmt.Println(line)
		}
		sub(fmt.Sprintf("%s: best reply", mode))
		for _, ct := range bestCounters(b.Matrix(mode), b.Decks) {
			fmt.Println(counterLine(ct, b.Decks))
		}
	}
}

// tableLines renders a pivot table with rows for player 1's pattern.
func tableLines(t sweep.Table) []string {
	const w = 13
	var lines []string
	head := fmt.Sprintf("  %-5s", "P1\\P2")
	for _, col := range t.Cols {
		head += fmt.Sprintf("%*s", w, col)
	}
	lines = append(lines, bold(head))
	for i, row := range t.Rows {
		line := "  " + cyan(row) + strings.Repeat(" ", 5-len(row))
		for j := range t.Cols {
			if t.WinRate[i][j] == nil {
				line += dim(fmt.Sprintf("%*s", w, "-"))
				continue
			}
			cell := fmt.Sprintf("%*s", w, cellText(*t.WinRate[i][j], *t.TieRate[i][j]))
			line += shade(*t.WinRate[i][j], cell)
		}
		lines = append(lines, line)
	}
	return lines
}

func cellText(win, tie decimal.Decimal) string {
	return fmt.Sprintf("%s (%s)", win.Mul(hundred).StringFixed(1), tie.Mul(hundred).StringFixed(1))
}

var evens = decimal.NewFromFloat(0.5)

// shade colors a cell by who it favors: green when player 2 wins more than
// half the decks, red when less.
func shade(win decimal.Decimal, s string) string {
	switch win.Cmp(evens) {
	case 1:
		return good(s)
	case -1:
		return bad(s)
	default:
		return warn(s)
	}
}

func counterLine(ct Counter, decks int) string {
	rate := sweep.Rate(ct.Wins, decks).Mul(hundred).StringFixed(1)
	ci := fmt.Sprintf("95%% interval %.1f-%.1f", 100*ct.Low, 100*ct.Hi)
	return fmt.Sprintf("  %s → %s  %s%%  %s", ct.P1, ct.P2, rate, dim(ci))
}
