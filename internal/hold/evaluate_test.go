package hold

import (
	"errors"
	"math"
	"testing"
)

func TestEvaluateSettledAtTarget(t *testing.T) {
	m, conds, err := Evaluate(constant(10000, 1000), DefaultThresholds())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Mean != 10000 || m.Max != 10000 || m.Min != 10000 || m.Std != 0 {
		t.Fatalf("unexpected metrics %+v", m)
	}
	if !conds.MeanInBand || !conds.MaxBelowCeiling || !conds.MinAboveFloor || !conds.StdBelowCeiling {
		t.Fatalf("expected all conditions to hold, got %+v", conds)
	}
	if !conds.Pass() {
		t.Fatal("expected pass")
	}
}

func TestEvaluateLowMean(t *testing.T) {
	_, conds, err := Evaluate(constant(5000, 200), DefaultThresholds())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if conds.MeanInBand || conds.MeanAboveLow {
		t.Fatal("mean of 5000 should be below the band")
	}
	if !conds.MeanBelowHigh || !conds.MaxBelowCeiling || !conds.MinAboveFloor || !conds.StdBelowCeiling {
		t.Fatalf("expected the other conditions to hold, got %+v", conds)
	}
	if conds.Pass() {
		t.Fatal("expected fail")
	}
}

func TestEvaluateBandEdgesAreExclusive(t *testing.T) {
	th := DefaultThresholds()

	for _, v := range []float64{th.MeanLow, th.MeanHigh} {
		_, conds, err := Evaluate(constant(v, 10), th)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if conds.MeanInBand {
			t.Fatalf("mean exactly %.0f must not be in band", v)
		}
	}
}

func TestEvaluateUsesPopulationStd(t *testing.T) {
	window := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	m, _, err := Evaluate(window, DefaultThresholds())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(m.Mean-5) > 1e-12 || math.Abs(m.Std-2) > 1e-12 {
		t.Fatalf("expected mean 5 std 2, got mean %v std %v", m.Mean, m.Std)
	}
}

func TestEvaluateConditions(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name   string
		window []float64
		check  func(ConditionSet) bool
	}{
		{
			name:   "max at ceiling fails",
			window: []float64{8000, 14000, 8000, 8000},
			check:  func(c ConditionSet) bool { return !c.MaxBelowCeiling },
		},
		{
			name:   "min at floor fails",
			window: []float64{8000, 2000, 9000, 9000, 9000},
			check:  func(c ConditionSet) bool { return !c.MinAboveFloor },
		},
		{
			name:   "noisy window fails std",
			window: []float64{7000, 10500, 7000, 10500},
			check:  func(c ConditionSet) bool { return c.MeanInBand && !c.StdBelowCeiling },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, conds, err := Evaluate(tt.window, th)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.check(conds) {
				t.Fatalf("unexpected conditions %+v", conds)
			}
			if conds.Pass() {
				t.Fatal("expected fail")
			}
		})
	}
}

func TestEvaluateCustomThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.MeanLow = 4000

	_, conds, err := Evaluate(constant(5000, 10), th)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !conds.Pass() {
		t.Fatalf("expected pass with lowered band, got %+v", conds)
	}
}

func TestEvaluateEmptyWindow(t *testing.T) {
	_, _, err := Evaluate(nil, DefaultThresholds())
	if !errors.Is(err, ErrEmptyWindow) {
		t.Fatalf("expected EmptyWindow, got %v", err)
	}
}
