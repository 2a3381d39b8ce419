package hold

// DefaultSettledWindowCap is the number of trailing samples considered settled
const DefaultSettledWindowCap = 10000

// SelectSettled returns the trailing limit samples of seg, or seg unchanged when it is
// not longer than limit. A non-positive limit selects DefaultSettledWindowCap.
func SelectSettled(seg Segment, limit int) Segment {
	if limit <= 0 {
		limit = DefaultSettledWindowCap
	}
	if seg.Len() <= limit {
		return seg
	}
	cut := seg.Len() - limit
	return Segment{
		Values: seg.Values[cut:],
		Start:  seg.Start + cut,
		End:    seg.End,
	}
}
