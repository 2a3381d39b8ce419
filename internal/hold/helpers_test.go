package hold

import "encoding/json"

// holdRecording builds a recording shaped like a real hold test: a flat baseline, one
// overshoot sample at 110% of the plateau, plateauLen samples at plateau, a release
// step to plateau-500 and a final drop to zero. The returned hold length re-anchors
// onto exactly the overshoot and plateau.
func holdRecording(baseline int, plateau float64, plateauLen int) ([]float64, int) {
	amp := make([]float64, 0, baseline+plateauLen+3)
	for i := 0; i < baseline; i++ {
		amp = append(amp, 0)
	}
	amp = append(amp, plateau*1.1)
	for i := 0; i < plateauLen; i++ {
		amp = append(amp, plateau)
	}
	amp = append(amp, plateau-500, 0)
	return amp, plateauLen + 1
}

func rawRecord(amp []float64, holdLength int) RawRecord {
	ts := make([]float64, len(amp))
	for i := range ts {
		ts[i] = float64(i)
	}
	hold := make([]json.RawMessage, holdLength)
	for i := range hold {
		hold[i] = json.RawMessage("0")
	}
	return RawRecord{
		TesterInfo: &TesterInfo{
			CuffData: &CuffData{CuffValues: amp, Time: ts},
		},
		HoldSSBPCuff: hold,
	}
}

func constant(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
