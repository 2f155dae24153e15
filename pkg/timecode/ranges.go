package timecode

import "fmt"

// Range is a [start, end] pair of offsets in seconds.
type Range [2]float64

// Canon returns r with start <= end.
func (r Range) Canon() Range {
	if r[0] > r[1] {
		return Range{r[1], r[0]}
	}
	return r
}

// Duration returns the length of the canonical range in seconds.
func (r Range) Duration() float64 {
	c := r.Canon()
	return c[1] - c[0]
}

// RangeTimecodes converts both ends of a canonical range to labels. With
// DropFrameAuto each end picks its own format, so a range may start
// non-drop and end drop-frame.
func (c *Converter) RangeTimecodes(r Range, rate float64, mode DropFrameMode) (start, end string, err error) {
	r = r.Canon()
	if start, err = c.SecondsToTimecode(r[0], rate, mode); err != nil {
		return "", "", fmt.Errorf("range start: %w", err)
	}
	if end, err = c.SecondsToTimecode(r[1], rate, mode); err != nil {
		return "", "", fmt.Errorf("range end: %w", err)
	}
	return start, end, nil
}
