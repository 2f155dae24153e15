package timecode

// DroppedFrames returns how many frame labels have been skipped before
// hours:minutes in drop-frame timecode. Every minute drops its quota except
// minutes divisible by ten. Non-drop rates never skip labels.
func DroppedFrames(hours, minutes int, rate float64) int64 {
	quota := DropQuota(rate)
	if quota == 0 {
		return 0
	}
	total := int64(hours)*60 + int64(minutes)
	droppedMinutes := total - total/10
	return droppedMinutes * int64(quota)
}

// DecodeDropFrame converts drop-frame timecode components to a frame count.
// Labels are not checked; illegal labels such as 00:01:00;00 are computed
// mechanically and should be rejected with ValidateTimecode beforehand.
func DecodeDropFrame(c Components, rate float64) int64 {
	nominal := int64(NominalFPS(rate))

	frames := int64(c.Frames)
	frames += int64(c.Seconds) * nominal
	frames += int64(c.Minutes) * nominal * 60
	frames += int64(c.Hours) * nominal * 60 * 60

	return frames - DroppedFrames(c.Hours, c.Minutes, rate)
}

// EncodeDropFrame converts a frame count to drop-frame timecode components.
// It is the exact inverse of DecodeDropFrame for every legal label.
func EncodeDropFrame(frameCount int64, rate float64) Components {
	nominal := int64(NominalFPS(rate))
	if frameCount <= 0 || nominal <= 0 {
		return Components{}
	}
	quota := int64(DropQuota(rate))

	totalMinutes, residual := countMinutes(frameCount, nominal, quota)
	seconds, frames := labelFrames(totalMinutes, residual, nominal, quota)

	return Components{
		Hours:   int(totalMinutes / 60),
		Minutes: int(totalMinutes % 60),
		Seconds: int(seconds),
		Frames:  int(frames),
	}
}

// countMinutes splits a frame count into elapsed timecode minutes and the
// number of frames actually played inside the current minute. Each block of
// ten minutes holds one full minute followed by nine minutes that are short
// by quota frames.
func countMinutes(frameCount, nominal, quota int64) (minutes, residual int64) {
	fullMinute := nominal * 60
	droppedMinute := fullMinute - quota
	tenMinutes := fullMinute + droppedMinute*9

	blocks := frameCount / tenMinutes
	residual = frameCount % tenMinutes

	var extra int64
	if residual >= fullMinute {
		residual -= fullMinute
		extra = 1 + residual/droppedMinute
		residual %= droppedMinute
	}

	return blocks*10 + extra, residual
}

// labelFrames turns the frames played inside a minute into the seconds and
// frame label shown for it. Minutes that drop start counting at label quota,
// so the quota is added back before splitting by the nominal radix.
func labelFrames(minutes, residual, nominal, quota int64) (seconds, frames int64) {
	label := residual
	if minutes%10 != 0 {
		label += quota
	}
	return label / nominal, label % nominal
}
