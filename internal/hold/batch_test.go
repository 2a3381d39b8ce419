package hold

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestClassifySettledHold(t *testing.T) {
	amp, holdLength := holdRecording(9000, 10000, 1000)
	c := NewClassifier(DefaultOptions())

	out := c.Classify("CAA041PAA046-run3", rawRecord(amp, holdLength))
	if out.Err != nil {
		t.Fatalf("unexpected error: %v", out.Err)
	}

	r := out.Result
	if r.Metrics == nil {
		t.Fatal("expected metrics")
	}
	if *r.Metrics != (Metrics{Max: 10000, Min: 10000, Mean: 10000, Std: 0}) {
		t.Fatalf("unexpected metrics %+v", *r.Metrics)
	}
	if !r.Pass || r.Pass != r.Conditions.Pass() {
		t.Fatalf("expected pass, got %+v", r)
	}
	if strOrNil(r.CuffID) != "CAA041" || strOrNil(r.EKGID) != "PAA046" || strOrNil(r.RunName) != "run3" {
		t.Fatalf("unexpected identity %s %s %s", strOrNil(r.CuffID), strOrNil(r.EKGID), strOrNil(r.RunName))
	}
}

func TestClassifyLowPlateau(t *testing.T) {
	amp, holdLength := holdRecording(9000, 5000, 1000)

	out := NewClassifier(DefaultOptions()).Classify("low", rawRecord(amp, holdLength))
	if out.Err != nil {
		t.Fatalf("unexpected error: %v", out.Err)
	}

	c := out.Result.Conditions
	if c.MeanInBand || !c.MaxBelowCeiling || !c.MinAboveFloor || !c.StdBelowCeiling {
		t.Fatalf("unexpected conditions %+v", c)
	}
	if out.Result.Pass {
		t.Fatal("expected fail")
	}
}

func TestClassifyCapsSettledWindow(t *testing.T) {
	// Plateau longer than the cap with an early dip that only the full plateau would see.
	amp, holdLength := holdRecording(100, 10000, 15000)
	amp[101+10] = 1000

	opts := DefaultOptions()
	out := NewClassifier(opts).Classify("long", rawRecord(amp, holdLength))
	if out.Err != nil {
		t.Fatalf("unexpected error: %v", out.Err)
	}
	if out.Result.Metrics.Min != 10000 {
		t.Fatalf("dip outside the settled window leaked into min: %v", out.Result.Metrics.Min)
	}

	opts.SettledWindowCap = 20000
	out = NewClassifier(opts).Classify("long", rawRecord(amp, holdLength))
	if out.Result.Metrics.Min != 1000 {
		t.Fatalf("expected the wider window to include the dip, got min %v", out.Result.Metrics.Min)
	}
}

func TestClassifySingleSampleHold(t *testing.T) {
	amp, _ := holdRecording(10, 10000, 10)

	out := NewClassifier(DefaultOptions()).Classify("CAA1PAA2-r", rawRecord(amp, 1))
	if !errors.Is(out.Err, ErrDegenerateSegment) {
		t.Fatalf("expected DegenerateSegment, got %v", out.Err)
	}
	r := out.Result
	if r.Pass || r.Metrics != nil || r.Error == "" {
		t.Fatalf("unexpected failure result %+v", r)
	}
	if strOrNil(r.CuffID) != "CAA1" {
		t.Fatal("identity should still be decoded for failed records")
	}
}

func TestClassifyFlatPlateauIsDegenerate(t *testing.T) {
	out := NewClassifier(DefaultOptions()).Classify("flat", rawRecord(flatPlateau(), 1001))
	if !errors.Is(out.Err, ErrDegenerateSegment) {
		t.Fatalf("expected DegenerateSegment, got %v", out.Err)
	}
}

func TestAggregatorIsolatesFailures(t *testing.T) {
	records := make(map[string]RawRecord)
	for i := 0; i < 5; i++ {
		amp, holdLength := holdRecording(500, 8000+float64(i)*100, 2000)
		records[fmt.Sprintf("CAA%dPAA%d-run%d", i, i, i)] = rawRecord(amp, holdLength)
	}
	records["broken"] = RawRecord{}

	results := NewAggregator(NewClassifier(DefaultOptions()), 3, nil).Run(context.Background(), records)

	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].RecordID >= results[i].RecordID {
			t.Fatalf("results not ordered by id: %s before %s", results[i-1].RecordID, results[i].RecordID)
		}
	}

	for _, r := range results {
		if r.RecordID == "broken" {
			if !strings.HasPrefix(r.Error, string(KindMalformedRecord)) || r.Pass || r.Metrics != nil {
				t.Fatalf("unexpected result for broken record: %+v", r)
			}
			continue
		}
		if r.Failed() || !r.Pass {
			t.Fatalf("record %s should pass: %+v", r.RecordID, r)
		}
	}
}

func TestAggregatorIsDeterministic(t *testing.T) {
	records := make(map[string]RawRecord)
	for i := 0; i < 20; i++ {
		amp, holdLength := holdRecording(50, 6000+float64(i)*300, 300)
		records[fmt.Sprintf("rec-%02d", i)] = rawRecord(amp, holdLength)
	}

	agg := NewAggregator(NewClassifier(DefaultOptions()), 4, nil)
	first := agg.Run(context.Background(), records)
	second := agg.Run(context.Background(), records)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("two runs over the same records differ")
	}
}

func TestAggregatorDeadline(t *testing.T) {
	amp, holdLength := holdRecording(50, 9000, 300)
	records := map[string]RawRecord{
		"CAA1PAA1-a": rawRecord(amp, holdLength),
		"CAA2PAA2-b": rawRecord(amp, holdLength),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewAggregator(NewClassifier(DefaultOptions()), 1, nil).Run(ctx, records)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if !strings.HasPrefix(r.Error, string(KindMalformedRecord)) || r.Pass {
			t.Fatalf("expected unprocessed record to be malformed, got %+v", r)
		}
		if r.CuffID == nil {
			t.Fatal("identity should be decoded for unprocessed records")
		}
	}
}

func TestSummarize(t *testing.T) {
	th := DefaultThresholds()
	results := []Result{
		{RecordID: "a", Metrics: &Metrics{Max: 10000, Min: 9000, Mean: 9500, Std: 10},
			Conditions: ConditionSet{MeanInBand: true, MaxBelowCeiling: true, MinAboveFloor: true, StdBelowCeiling: true}, Pass: true},
		{RecordID: "b", Metrics: &Metrics{Max: 15000, Min: 1000, Mean: 5000, Std: 10},
			Conditions: ConditionSet{StdBelowCeiling: true}},
		{RecordID: "c", Error: "MalformedRecord: missing tester_info"},
	}

	s := Summarize(results, th)
	want := Summary{
		Total: 3, Errored: 1,
		MeanInBand: 1, MaxBelowCeiling: 1, MinAboveFloor: 1, StdBelowCeiling: 2, Passed: 1,
		MaxAboveCeiling: 1, MinBelowFloor: 1, MeanBelowLow: 1,
	}
	if s != want {
		t.Fatalf("expected %+v, got %+v", want, s)
	}
}
