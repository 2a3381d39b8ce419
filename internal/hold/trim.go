package hold

import "gonum.org/v1/gonum/floats"

// RisingEdgeRatio is the fraction of the segment peak a sample must exceed to be
// considered part of the approach to peak.
const RisingEdgeRatio = 0.95

// TrimRisingEdge drops the approach to peak from a plateau segment. Everything up to and
// including the last sample above RisingEdgeRatio of the segment maximum is removed.
func TrimRisingEdge(seg Segment) (Segment, error) {
	if seg.Len() == 0 {
		return Segment{}, degenerate("cannot trim an empty segment")
	}

	threshold := RisingEdgeRatio * floats.Max(seg.Values)

	last := -1
	for i := seg.Len() - 1; i >= 0; i-- {
		if seg.Values[i] > threshold {
			last = i
			break
		}
	}
	if last < 0 {
		return Segment{}, degenerate("no sample exceeds %.2f (%.0f%% of peak)", threshold, RisingEdgeRatio*100)
	}

	cutoff := last + 1
	if cutoff >= seg.Len() {
		return Segment{}, degenerate("nothing remains after the sample at %d above %.2f", seg.Start+last, threshold)
	}

	return Segment{
		Values: seg.Values[cutoff:],
		Start:  seg.Start + cutoff,
		End:    seg.End,
	}, nil
}
