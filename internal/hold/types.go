// Package hold classifies pressure-cuff hold-test recordings as pass/fail.
//
// A recording runs through a fixed pipeline: Extract builds a typed WaveformRecord,
// Locate re-anchors the hold tail on the last abrupt transition, TrimRisingEdge drops
// the approach to peak, SelectSettled keeps the trailing settled window and Evaluate
// checks its statistics against Thresholds. Aggregator drives the pipeline over a batch.
package hold

// WaveformRecord is the validated form of one input recording.
type WaveformRecord struct {
	Amplitude  []float64
	Timestamp  []float64
	HoldLength int
}

// Segment is a contiguous slice of a waveform's amplitude. Start and End are offsets
// into the recording's amplitude sequence; End is exclusive.
type Segment struct {
	Values []float64
	Start  int
	End    int
}

// Len returns the number of samples in the segment
func (s Segment) Len() int {
	return len(s.Values)
}

// Metrics are the descriptive statistics of a settled window
type Metrics struct {
	Max  float64 `json:"max"`
	Min  float64 `json:"min"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// ConditionSet holds the named pass conditions for a settled window.
type ConditionSet struct {
	MeanBelowHigh   bool `json:"mean_below_high"`
	MeanAboveLow    bool `json:"mean_above_low"`
	MeanInBand      bool `json:"mean_in_band"`
	MaxBelowCeiling bool `json:"max_below_ceiling"`
	MinAboveFloor   bool `json:"min_above_floor"`
	StdBelowCeiling bool `json:"std_below_ceiling"`
}

// Pass is the conjunction of the four named conditions.
func (c ConditionSet) Pass() bool {
	return c.MeanInBand && c.MaxBelowCeiling && c.MinAboveFloor && c.StdBelowCeiling
}

// Identity is the decomposition of a record id into device and run identifiers.
// Fields are nil when the id does not follow the naming convention.
type Identity struct {
	CuffID  *string `json:"cuff_id"`
	EKGID   *string `json:"ekg_id"`
	RunName *string `json:"run_name"`
}

// Result is the terminal classification of one record. A successful result carries
// Metrics; a failed one carries Error and has Metrics set to nil and Pass set to false.
type Result struct {
	RecordID string `json:"record_id"`
	Identity
	Metrics    *Metrics     `json:"metrics,omitempty"`
	Conditions ConditionSet `json:"conditions"`
	Pass       bool         `json:"pass"`
	Error      string       `json:"error,omitempty"`
}

// Failed reports whether the record could not be classified
func (r Result) Failed() bool {
	return r.Error != ""
}
