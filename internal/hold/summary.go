package hold

// Summary counts how many records met each condition in a batch.
type Summary struct {
	Total           int `json:"total"`
	Errored         int `json:"errored"`
	MeanInBand      int `json:"mean_in_band"`
	MaxBelowCeiling int `json:"max_below_ceiling"`
	MinAboveFloor   int `json:"min_above_floor"`
	StdBelowCeiling int `json:"std_below_ceiling"`
	Passed          int `json:"passed"`

	// Exceedances over the successfully classified records
	MaxAboveCeiling int `json:"max_above_ceiling"`
	MinBelowFloor   int `json:"min_below_floor"`
	MeanBelowLow    int `json:"mean_below_low"`
	MeanAboveHigh   int `json:"mean_above_high"`
}

// Summarize tallies results against t.
func Summarize(results []Result, t Thresholds) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Failed() || r.Metrics == nil {
			s.Errored++
			continue
		}
		if r.Conditions.MeanInBand {
			s.MeanInBand++
		}
		if r.Conditions.MaxBelowCeiling {
			s.MaxBelowCeiling++
		}
		if r.Conditions.MinAboveFloor {
			s.MinAboveFloor++
		}
		if r.Conditions.StdBelowCeiling {
			s.StdBelowCeiling++
		}
		if r.Pass {
			s.Passed++
		}

		if r.Metrics.Max > t.MaxCeiling {
			s.MaxAboveCeiling++
		}
		if r.Metrics.Min < t.MinFloor {
			s.MinBelowFloor++
		}
		if r.Metrics.Mean < t.MeanLow {
			s.MeanBelowLow++
		}
		if r.Metrics.Mean > t.MeanHigh {
			s.MeanAboveHigh++
		}
	}
	return s
}
