package database

import (
	"testing"
	"time"

	"github.com/chrissnell/cuffhold/internal/hold"
)

func TestRowsFromResults(t *testing.T) {
	cuff, run := "CAA041", "run3"
	at := time.Date(2025, 11, 16, 15, 53, 53, 0, time.UTC)
	results := []hold.Result{
		{
			RecordID:   "CAA041PAA046-run3",
			Identity:   hold.Identity{CuffID: &cuff, RunName: &run},
			Metrics:    &hold.Metrics{Max: 10010, Min: 9990, Mean: 10000, Std: 5},
			Conditions: hold.ConditionSet{MeanInBand: true, MaxBelowCeiling: true, MinAboveFloor: true, StdBelowCeiling: true},
			Pass:       true,
		},
		{RecordID: "bad", Error: "MalformedRecord: hold_ssbp_cuff is empty"},
	}

	rows := RowsFromResults("run-1", at, results)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	ok := rows[0]
	if ok.RunID != "run-1" || !ok.ClassifiedAt.Equal(at) || ok.MeanValue == nil || *ok.MeanValue != 10000 {
		t.Errorf("unexpected row for passing record: %+v", ok)
	}
	if ok.Error != nil || ok.MeanInBand == nil || !*ok.MeanInBand {
		t.Errorf("passing row should carry conditions and no error: %+v", ok)
	}

	bad := rows[1]
	if bad.MaxValue != nil || bad.MeanInBand != nil || bad.Pass {
		t.Errorf("failed row should have NULL statistics: %+v", bad)
	}
	if bad.Error == nil || *bad.Error != results[1].Error {
		t.Errorf("failed row error = %v", bad.Error)
	}

	back := bad.Result()
	if back.Metrics != nil || !back.Failed() {
		t.Errorf("round trip of failed row = %+v", back)
	}
	if got := ok.Result(); got.Metrics == nil || *got.Metrics != *results[0].Metrics || !got.Conditions.Pass() {
		t.Errorf("round trip of passing row = %+v", got)
	}
}
