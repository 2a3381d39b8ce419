package hold

import "encoding/json"

// RawRecord is the loosely structured input record as decoded from a tester JSON file.
// Only the length of HoldSSBPCuff is meaningful.
//
// Decoding a RawRecord never fails on a well-formed JSON value: a record whose fields
// have the wrong types keeps the decode error and is rejected by Extract, so one bad
// record cannot fail the decode of a whole batch.
type RawRecord struct {
	TesterInfo   *TesterInfo       `json:"tester_info"`
	HoldSSBPCuff []json.RawMessage `json:"hold_ssbp_cuff"`

	decodeErr error
}

// UnmarshalJSON decodes a record, deferring type mismatches to Extract
func (r *RawRecord) UnmarshalJSON(b []byte) error {
	type plain RawRecord
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		*r = RawRecord{decodeErr: err}
		return nil
	}
	*r = RawRecord(p)
	return nil
}

// TesterInfo is the tester_info block of a recording
type TesterInfo struct {
	CuffData *CuffData `json:"cuff_data"`
}

// CuffData holds the raw cuff pressure samples and their timestamps
type CuffData struct {
	CuffValues []float64 `json:"cuff_values"`
	Time       []float64 `json:"time"`
}

// Extract validates a raw record and builds its WaveformRecord. The returned record
// owns copies of the sample slices.
func Extract(raw RawRecord) (WaveformRecord, error) {
	if raw.decodeErr != nil {
		return WaveformRecord{}, malformed("record does not have the expected shape: %v", raw.decodeErr)
	}
	if raw.TesterInfo == nil {
		return WaveformRecord{}, malformed("missing tester_info")
	}
	cuff := raw.TesterInfo.CuffData
	if cuff == nil {
		return WaveformRecord{}, malformed("missing tester_info.cuff_data")
	}
	if len(cuff.CuffValues) == 0 {
		return WaveformRecord{}, malformed("cuff_values is missing or empty")
	}
	if len(cuff.Time) == 0 {
		return WaveformRecord{}, malformed("time is missing or empty")
	}
	if len(cuff.CuffValues) != len(cuff.Time) {
		return WaveformRecord{}, malformed("cuff_values has %d samples but time has %d",
			len(cuff.CuffValues), len(cuff.Time))
	}

	holdLength := len(raw.HoldSSBPCuff)
	if holdLength == 0 {
		return WaveformRecord{}, malformed("hold_ssbp_cuff is missing or empty")
	}
	if holdLength > len(cuff.CuffValues) {
		return WaveformRecord{}, malformed("hold length %d exceeds %d cuff samples",
			holdLength, len(cuff.CuffValues))
	}

	return WaveformRecord{
		Amplitude:  append([]float64(nil), cuff.CuffValues...),
		Timestamp:  append([]float64(nil), cuff.Time...),
		HoldLength: holdLength,
	}, nil
}
