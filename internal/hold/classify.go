package hold

import "errors"

// Options configures a Classifier
type Options struct {
	Thresholds       Thresholds
	SettledWindowCap int
	CuffPrefix       string
	EKGPrefix        string
}

// DefaultOptions returns the deployed thresholds, window cap and id prefixes
func DefaultOptions() Options {
	return Options{
		Thresholds:       DefaultThresholds(),
		SettledWindowCap: DefaultSettledWindowCap,
		CuffPrefix:       DefaultCuffPrefix,
		EKGPrefix:        DefaultEKGPrefix,
	}
}

// Outcome is the per-record result of the pipeline. Exactly one of Result.Metrics
// and Err is set.
type Outcome struct {
	Result Result
	Err    *Error
}

// Classifier runs the full pipeline for single records. It holds no mutable state and
// is safe for concurrent use.
type Classifier struct {
	thresholds Thresholds
	windowCap  int
	ids        *IdentityParser
}

// NewClassifier creates a classifier from opts
func NewClassifier(opts Options) *Classifier {
	windowCap := opts.SettledWindowCap
	if windowCap <= 0 {
		windowCap = DefaultSettledWindowCap
	}
	return &Classifier{
		thresholds: opts.Thresholds,
		windowCap:  windowCap,
		ids:        NewIdentityParser(opts.CuffPrefix, opts.EKGPrefix),
	}
}

// Thresholds returns the limits this classifier applies
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Classify runs Extract, Locate, TrimRisingEdge, SelectSettled and Evaluate on one record.
func (c *Classifier) Classify(recordID string, raw RawRecord) Outcome {
	identity, _ := c.ids.Parse(recordID)

	m, conds, err := c.analyze(raw)
	if err != nil {
		return Failed(recordID, identity, err)
	}

	return Outcome{Result: Result{
		RecordID:   recordID,
		Identity:   identity,
		Metrics:    &m,
		Conditions: conds,
		Pass:       conds.Pass(),
	}}
}

func (c *Classifier) analyze(raw RawRecord) (Metrics, ConditionSet, error) {
	rec, err := Extract(raw)
	if err != nil {
		return Metrics{}, ConditionSet{}, err
	}

	plateau, err := Locate(rec.Amplitude, rec.HoldLength)
	if err != nil {
		return Metrics{}, ConditionSet{}, err
	}

	settled, err := TrimRisingEdge(plateau)
	if err != nil {
		return Metrics{}, ConditionSet{}, err
	}

	window := SelectSettled(settled, c.windowCap)
	if window.Len() == 0 {
		return Metrics{}, ConditionSet{}, degenerate("settled window is empty")
	}

	return Evaluate(window.Values, c.thresholds)
}

// Failed builds the failure outcome for a record. Errors that are not already typed
// are reported as MalformedRecord.
func Failed(recordID string, identity Identity, err error) Outcome {
	var herr *Error
	if !errors.As(err, &herr) {
		herr = &Error{Kind: KindMalformedRecord, Msg: err.Error()}
	}
	return Outcome{
		Result: Result{
			RecordID: recordID,
			Identity: identity,
			Pass:     false,
			Error:    herr.Error(),
		},
		Err: herr,
	}
}
