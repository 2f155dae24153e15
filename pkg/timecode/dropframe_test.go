package timecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDroppedFrames(t *testing.T) {
	assert.Equal(t, int64(0), DroppedFrames(0, 0, 29.97))
	assert.Equal(t, int64(2), DroppedFrames(0, 1, 29.97))
	assert.Equal(t, int64(18), DroppedFrames(0, 10, 29.97))
	assert.Equal(t, int64(108), DroppedFrames(1, 0, 29.97))
	assert.Equal(t, int64(216), DroppedFrames(1, 0, 59.94))
	assert.Equal(t, int64(0), DroppedFrames(1, 7, 25))
}

func TestEncodeDropFrameBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		frames int64
		rate   float64
		want   string
	}{
		{"zero", 0, 29.97, "00:00:00;00"},
		{"last frame of minute 0", 1799, 29.97, "00:00:59;29"},
		{"minute 1", 1800, 29.97, "00:01:00;02"},
		{"minute 2", 3598, 29.97, "00:02:00;02"},
		{"minute 9", 16184, 29.97, "00:09:00;02"},
		{"last frame of minute 9", 17981, 29.97, "00:09:59;29"},
		{"minute 10", 17982, 29.97, "00:10:00;00"},
		{"minute 11", 19782, 29.97, "00:11:00;02"},
		{"minute 19", 34166, 29.97, "00:19:00;02"},
		{"minute 20", 35964, 29.97, "00:20:00;00"},
		{"one hour", 107892, 29.97, "01:00:00;00"},
		{"24 hours", 2589408, 29.97, "24:00:00;00"},
		{"59.94 minute 1", 3600, 59.94, "00:01:00;04"},
		{"59.94 minute 10", 35964, 59.94, "00:10:00;00"},
		{"59.94 last frame of minute 0", 3599, 59.94, "00:00:59;59"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := Timecode{Components: EncodeDropFrame(tt.frames, tt.rate), Format: FormatDropFrame}
			assert.Equal(t, tt.want, tc.String())
			assert.Equal(t, tt.frames, DecodeDropFrame(tc.Components, tt.rate))
		})
	}
}

func TestDropFrameRoundTrip(t *testing.T) {
	for _, rate := range []float64{29.97, 59.94} {
		for n := int64(0); n < 80000; n++ {
			c := EncodeDropFrame(n, rate)
			if got := DecodeDropFrame(c, rate); got != n {
				t.Fatalf("rate %v: Decode(Encode(%d)) = %d (%+v)", rate, n, got, c)
			}
		}
		for _, n := range []int64{1_000_000, 2_589_407, 2_589_408, 10_000_019} {
			assert.Equal(t, n, DecodeDropFrame(EncodeDropFrame(n, rate), rate), "rate %v n %d", rate, n)
		}
	}
}

func TestDropFrameLabelInvariant(t *testing.T) {
	for _, rate := range []float64{29.97, 59.94} {
		quota := DropQuota(rate)
		seenTenthMinuteZero := false
		for n := int64(0); n < 3*35964; n++ {
			c := EncodeDropFrame(n, rate)
			if c.Seconds != 0 || c.Frames >= quota {
				continue
			}
			if c.Minutes%10 != 0 {
				t.Fatalf("rate %v: frame %d encoded to dropped label %+v", rate, n, c)
			}
			seenTenthMinuteZero = true
		}
		assert.True(t, seenTenthMinuteZero, "labels below the quota must exist on tenth minutes")
	}
}

func TestDecodeDropFrameDoesNotReject(t *testing.T) {
	// 00:01:00;00 does not exist but is decoded mechanically.
	assert.Equal(t, int64(1798), DecodeDropFrame(Components{Minutes: 1}, 29.97))
}

func TestEncodeDropFrameNegative(t *testing.T) {
	assert.Equal(t, Components{}, EncodeDropFrame(-5, 29.97))
	assert.Equal(t, Components{}, EncodeDropFrame(10, 0))
}
