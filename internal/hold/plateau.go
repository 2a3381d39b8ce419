package hold

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Locate finds the plateau inside the hold tail of amplitude.
//
// The last holdLength samples are the nominal hold phase, but they usually run past
// the plateau into the release of pressure. The largest absolute first difference in
// the tail marks that release; the window is shifted earlier by gap = holdLength - peak
// samples so the release falls just past its trailing edge.
func Locate(amplitude []float64, holdLength int) (Segment, error) {
	n := len(amplitude)
	if holdLength < 2 {
		return Segment{}, degenerate("hold length %d leaves no differences to compare", holdLength)
	}
	if holdLength > n {
		return Segment{}, degenerate("hold length %d exceeds %d samples", holdLength, n)
	}

	tail := amplitude[n-holdLength:]
	diffs := make([]float64, len(tail)-1)
	for i := range diffs {
		diffs[i] = math.Abs(tail[i+1] - tail[i])
	}
	peak := floats.MaxIdx(diffs)
	gap := holdLength - peak

	// A start before the beginning of the recording is clamped to zero.
	start := max(n-holdLength-gap, 0)
	end := n - gap
	if end <= start {
		return Segment{}, degenerate("plateau window [%d:%d] is empty", start, end)
	}

	return Segment{
		Values: amplitude[start:end],
		Start:  start,
		End:    end,
	}, nil
}
