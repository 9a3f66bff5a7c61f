package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"penney-bench/server/engine"
	"penney-bench/server/errs"
	"penney-bench/server/sweep"
)

func TestWilsonCI95(t *testing.T) {
	lo, hi := WilsonCI95(0, 0)
	if lo != 0 || hi != 1 {
		t.Fatalf("empty = [%v, %v]", lo, hi)
	}
	lo, hi = WilsonCI95(50, 100)
	if lo >= 0.5 || hi <= 0.5 {
		t.Fatalf("fair coin interval [%v, %v] excludes 0.5", lo, hi)
	}
	lo, _ = WilsonCI95(900, 1000)
	if lo <= 0.85 {
		t.Fatalf("lopsided low bound %v", lo)
	}
	if lo, hi := WilsonCI95(0, 100); lo > 1e-12 || hi <= 0 {
		t.Fatalf("zero wins interval [%v, %v]", lo, hi)
	}
}

func TestBestCountersClassicReplies(t *testing.T) {
	decks, err := engine.GenerateDecks(400, engine.DefaultHalfSize, 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	m, err := sweep.AggregateMode(context.Background(), decks, engine.Tricks, sweep.Options{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	counters := bestCounters(&m, len(decks))
	if len(counters) != engine.NumPatterns {
		t.Fatalf("counters = %d", len(counters))
	}
	for _, ct := range counters {
		if ct.P1 == ct.P2 {
			t.Fatalf("%s countered by itself", ct.P1)
		}
	}
	// BBB is beaten most often by RBB.
	if counters[0].P1.String() != "BBB" || counters[0].P2.String() != "RBB" {
		t.Fatalf("BBB reply = %s", counters[0].P2)
	}
	ct := counters[0]
	rate := float64(ct.Wins) / float64(len(decks))
	if ct.Low > rate || ct.Hi < rate {
		t.Fatalf("interval [%v, %v] misses the observed rate %v", ct.Low, ct.Hi, rate)
	}
}

func TestBetterPrefersWinsThenFewerTies(t *testing.T) {
	if !better(sweep.Cell{Wins: 5, Ties: 9}, sweep.Cell{Wins: 4}) {
		t.Fatalf("more wins should win")
	}
	if !better(sweep.Cell{Wins: 5, Ties: 1}, sweep.Cell{Wins: 5, Ties: 2}) {
		t.Fatalf("fewer ties should break the tie")
	}
	if better(sweep.Cell{Wins: 5}, sweep.Cell{Wins: 5}) {
		t.Fatalf("equal cells are not better")
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{context.Canceled, 130},
		{fmt.Errorf("aggregate: %w", context.Canceled), 130},
		{errs.Configurationf("bad"), 2},
		{fmt.Errorf("merge: %w", errs.Schemaf("overlap")), 2},
		{errs.NotFoundf("batch 1"), 1},
		{errors.New("boom"), 1},
	}
	for _, tc := range cases {
		if got := exitCode(tc.err); got != tc.want {
			t.Fatalf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestParseFlagsRejectsStrays(t *testing.T) {
	fs := newFlags("--show")
	fs.Int64("id", 0, "")
	if err := parseFlags(fs, []string{"-id", "3", "extra"}); !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("err = %v", err)
	}
	fs = newFlags("--show")
	fs.Int64("id", 0, "")
	if err := parseFlags(fs, []string{"-nope"}); !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("err = %v", err)
	}
}

func TestCounterLineHasNoVerdict(t *testing.T) {
	useColor = false
	p1, _ := engine.ParsePattern("BBB")
	p2, _ := engine.ParsePattern("RBB")
	line := counterLine(Counter{P1: p1, P2: p2, Wins: 90, Low: 0.82, Hi: 0.95}, 100)
	if !strings.Contains(line, "BBB → RBB  90.0%") || !strings.Contains(line, "95% interval 82.0-95.0") {
		t.Fatalf("line = %q", line)
	}
	if strings.Contains(line, "✓") {
		t.Fatalf("line carries a verdict: %q", line)
	}
}

func TestTableLinesPlain(t *testing.T) {
	useColor = false
	decks, err := engine.GenerateDecks(20, 3, 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	res, err := sweep.Aggregate(context.Background(), decks, sweep.Options{Workers: 1})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	b := sweep.NewBatch(1, 3, res)
	lines := tableLines(sweep.Pivot(&b, engine.Cards))
	if len(lines) != 1+engine.NumPatterns {
		t.Fatalf("lines = %d", len(lines))
	}
	if !strings.HasPrefix(lines[1], "  BBB  ") {
		t.Fatalf("first row = %q", lines[1])
	}
	if len(lines[1]) != len(lines[0]) {
		t.Fatalf("row width %d != header width %d", len(lines[1]), len(lines[0]))
	}
}
