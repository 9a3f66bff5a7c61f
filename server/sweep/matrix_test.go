package sweep

import (
	"context"
	"testing"
)

func TestRecordsRoundTrip(t *testing.T) {
	res, err := Aggregate(context.Background(), genDecks(t, 12, 7, 4), Options{})
	if err != nil {
		t.Fatal(err)
	}
	recs := res.Cards.Records()
	if len(recs) != 64 {
		t.Fatalf("got %d records, want 64", len(recs))
	}
	if recs[0].Player1 != "BBB" || recs[1].Player2 != "BBR" || recs[63].Player1 != "RRR" {
		t.Fatalf("records not row-major: %+v %+v %+v", recs[0], recs[1], recs[63])
	}
	back, err := MatrixFromRecords(recs)
	if err != nil {
		t.Fatal(err)
	}
	if back != res.Cards {
		t.Fatalf("round trip changed the matrix")
	}
}

func TestMatrixFromRecordsRejectsCorrupt(t *testing.T) {
	var m Matrix
	good := m.Records()

	missing := good[:63]
	dup := append(append([]Record{}, good[:63]...), good[0])
	diag := append([]Record{}, good...)
	diag[0].Wins = 1
	neg := append([]Record{}, good...)
	neg[1].Ties = -1
	badPattern := append([]Record{}, good...)
	badPattern[2].Player2 = "BR"

	for name, recs := range map[string][]Record{
		"missing": missing, "duplicate": dup, "diagonal": diag, "negative": neg, "pattern": badPattern,
	} {
		if _, err := MatrixFromRecords(recs); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
