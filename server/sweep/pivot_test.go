package sweep

import (
	"encoding/json"
	"testing"

	"penney-bench/server/engine"
)

func TestRate(t *testing.T) {
	tests := []struct {
		count, decks int
		want         string
	}{
		{1, 3, "0.3333"},
		{2, 3, "0.6667"},
		{5, 10, "0.5"},
		{0, 0, "0"},
	}
	for _, tt := range tests {
		if got := Rate(tt.count, tt.decks).String(); got != tt.want {
			t.Fatalf("Rate(%d, %d) = %s, want %s", tt.count, tt.decks, got, tt.want)
		}
	}
}

func TestPivotMasksDiagonal(t *testing.T) {
	b := Batch{ID: 7, Decks: 4}
	b.Cards[1][5] = Cell{Wins: 3, Ties: 1}

	tbl := Pivot(&b, engine.Cards)
	if tbl.Rows[1] != "BBR" || tbl.Cols[5] != "RBR" {
		t.Fatalf("labels wrong: %v", tbl.Rows)
	}
	for i := 0; i < size; i++ {
		if tbl.Wins[i][i] != nil || tbl.Ties[i][i] != nil || tbl.WinRate[i][i] != nil {
			t.Fatalf("diagonal %d not masked", i)
		}
	}
	if *tbl.Wins[1][5] != 3 || *tbl.Ties[1][5] != 1 {
		t.Fatalf("cell 1,5 = %d/%d, want 3/1", *tbl.Wins[1][5], *tbl.Ties[1][5])
	}
	if tbl.WinRate[1][5].String() != "0.75" {
		t.Fatalf("win rate = %s, want 0.75", tbl.WinRate[1][5])
	}
	if *tbl.Wins[5][1] != 0 {
		t.Fatalf("tricks data leaked into cards table")
	}

	raw, err := json.Marshal(tbl)
	if err != nil {
		t.Fatal(err)
	}
	var back struct {
		Wins [][]*int `json:"wins"`
	}
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back.Wins[0][0] != nil || back.Wins[1][5] == nil {
		t.Fatalf("json lost the mask: %s", raw)
	}
}
