package hold

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Thresholds are the pass limits applied to a settled window. All comparisons are strict.
type Thresholds struct {
	MeanLow    float64 `json:"mean_low"`    // mean must be above this
	MeanHigh   float64 `json:"mean_high"`   // mean must be below this
	MaxCeiling float64 `json:"max_ceiling"` // max must be below this
	MinFloor   float64 `json:"min_floor"`   // min must be above this
	StdCeiling float64 `json:"std_ceiling"` // population std must be below this
}

// DefaultThresholds returns the limits used by the deployed hold-test checks.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MeanLow:    6500,
		MeanHigh:   11000,
		MaxCeiling: 14000,
		MinFloor:   2000,
		StdCeiling: 1000,
	}
}

// Evaluate computes the statistics of a settled window and checks them against t.
// The standard deviation is the population form (no Bessel correction).
func Evaluate(window []float64, t Thresholds) (Metrics, ConditionSet, error) {
	if len(window) == 0 {
		return Metrics{}, ConditionSet{}, &Error{Kind: KindEmptyWindow, Msg: "settled window has no samples"}
	}

	mean, std := stat.PopMeanStdDev(window, nil)
	m := Metrics{
		Max:  floats.Max(window),
		Min:  floats.Min(window),
		Mean: mean,
		Std:  std,
	}

	c := ConditionSet{
		MeanBelowHigh:   m.Mean < t.MeanHigh,
		MeanAboveLow:    m.Mean > t.MeanLow,
		MaxBelowCeiling: m.Max < t.MaxCeiling,
		MinAboveFloor:   m.Min > t.MinFloor,
		StdBelowCeiling: m.Std < t.StdCeiling,
	}
	c.MeanInBand = c.MeanBelowHigh && c.MeanAboveLow

	return m, c, nil
}
