package timecode

import (
	"fmt"
	"math"
	"strconv"
)

// DropFrameMode selects how SecondsToTimecode picks the label format.
type DropFrameMode int

const (
	// DropFrameAuto uses drop-frame for durations of a minute or more at a
	// drop-frame rate, non-drop otherwise.
	DropFrameAuto DropFrameMode = iota
	// DropFrameOn requests drop-frame labels. It is ignored for rates that
	// have no drop-frame form; those always render with colons.
	DropFrameOn
	// DropFrameOff forces non-drop labels.
	DropFrameOff
)

// DropFrameModeOf maps an optional flag to a mode: nil is DropFrameAuto.
func DropFrameModeOf(dropFrame *bool) DropFrameMode {
	switch {
	case dropFrame == nil:
		return DropFrameAuto
	case *dropFrame:
		return DropFrameOn
	default:
		return DropFrameOff
	}
}

func (m DropFrameMode) String() string {
	switch m {
	case DropFrameOn:
		return "on"
	case DropFrameOff:
		return "off"
	default:
		return "auto"
	}
}

// ParseDropFrameMode parses "auto", "on"/"true" and "off"/"false".
func ParseDropFrameMode(s string) (DropFrameMode, error) {
	switch s {
	case "", "auto":
		return DropFrameAuto, nil
	case "on", "true", "drop", "df":
		return DropFrameOn, nil
	case "off", "false", "non-drop", "ndf":
		return DropFrameOff, nil
	}
	return DropFrameAuto, fmt.Errorf("unknown drop-frame mode %q", s)
}

const (
	// autoDropFrameThreshold is the shortest duration, in seconds, that
	// DropFrameAuto renders as drop-frame.
	autoDropFrameThreshold = 60
	// driftWarningThreshold is the shortest forced non-drop duration, in
	// seconds, that raises AdvisoryNonDropDrift.
	driftWarningThreshold = 3600
	// driftPerHour is the approximate wall-clock drift, in seconds, of one
	// hour of non-drop labels at a drop-frame rate.
	driftPerHour = 3.6
)

// Option configures a Converter.
type Option func(*Converter)

// WithSink sets the advisory sink. A nil sink discards advisories.
func WithSink(s Sink) Option {
	return func(c *Converter) {
		if s == nil {
			s = Discard
		}
		c.sink = s
	}
}

// Converter performs conversions and reports advisories to its sink.
// A Converter holds no mutable state and is safe for concurrent use as
// long as its sink is.
type Converter struct {
	sink Sink
}

// New creates a Converter. Without options advisories are discarded.
func New(opts ...Option) *Converter {
	c := &Converter{sink: Discard}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Converter) advise(code AdvisoryCode, format string, args ...interface{}) {
	c.sink.Advise(Advisory{Code: code, Message: fmt.Sprintf(format, args...)})
}

// SecondsToTimecode converts a duration to a timecode label.
//
// A duration of zero always yields "00:00:00:00". Drop-frame labels are
// only produced for drop-frame rates; DropFrameOn is silently ignored for
// any other rate and the label keeps its colons.
func (c *Converter) SecondsToTimecode(seconds, rate float64, mode DropFrameMode) (string, error) {
	tc, err := c.Timecode(seconds, rate, mode)
	if err != nil {
		return "", err
	}
	return tc.String(), nil
}

// Timecode converts a duration to timecode components and format.
func (c *Converter) Timecode(seconds, rate float64, mode DropFrameMode) (Timecode, error) {
	if seconds == 0 {
		return Timecode{Format: FormatNonDrop}, nil
	}
	if !validRate(rate) {
		return Timecode{}, fmt.Errorf("%w: %v", ErrInvalidFrameRate, rate)
	}
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return Timecode{}, fmt.Errorf("%w: %v", ErrInvalidDuration, seconds)
	}

	dropRate := IsDropFrameRate(rate)

	if mode == DropFrameOff && dropRate && seconds >= driftWarningThreshold {
		hours := seconds / 3600
		c.advise(AdvisoryNonDropDrift,
			"Converting %s seconds at %s fps without drop-frame timecode. After %s hour(s), drift is approximately %d seconds. Consider using drop-frame timecode for accurate timing.",
			formatRate(seconds), formatRate(rate), formatRate(hours), int64(math.Round(hours*driftPerHour)))
	}

	if useDropFrame(seconds, dropRate, mode) {
		frames := int64(math.Round(seconds * rate))
		return Timecode{Components: EncodeDropFrame(frames, rate), Format: FormatDropFrame}, nil
	}
	return Timecode{Components: nonDropComponents(seconds, rate), Format: FormatNonDrop}, nil
}

func useDropFrame(seconds float64, dropRate bool, mode DropFrameMode) bool {
	if !dropRate {
		return false
	}
	switch mode {
	case DropFrameOn:
		return true
	case DropFrameOff:
		return false
	default:
		return seconds >= autoDropFrameThreshold
	}
}

// nonDropComponents snaps seconds to a frame boundary and splits it with
// plain arithmetic. Both the frame count and the frame label are rounded
// before flooring so values such as 7.999999999999 land on frame 8. The
// snapped time keeps full precision.
func nonDropComponents(seconds, rate float64) Components {
	frames := math.Floor(precisionRound(rate*seconds, 12))
	normalised := frames / rate

	whole := math.Floor(normalised)
	frame := math.Floor(roundPlaces((normalised-whole)*rate, 2))

	total := int64(whole)
	return Components{
		Hours:   int(total / 3600),
		Minutes: int(total % 3600 / 60),
		Seconds: int(total % 60),
		Frames:  int(frame),
	}
}

// TimecodeToSeconds converts a label to seconds, rounded to two decimals.
//
// Loose shapes such as "mm:ss" are expanded with PadTimeToTimecode first.
// A rate of zero means no rate was supplied and yields ErrFrameRateRequired.
// Drop-frame labels use drop-frame arithmetic only at drop-frame rates;
// with any other rate they are computed as non-drop and an
// AdvisoryRateMismatch is raised.
func (c *Converter) TimecodeToSeconds(text string, rate float64) (float64, error) {
	if rate == 0 {
		return 0, ErrFrameRateRequired
	}
	if !validRate(rate) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidFrameRate, rate)
	}

	tc, err := ParseTimecode(PadTimeToTimecode(text))
	if err != nil {
		return 0, err
	}

	if IsDropFrameTimecode(text) {
		if IsDropFrameRate(rate) {
			frames := DecodeDropFrame(tc.Components, rate)
			return roundPlaces(float64(frames)/rate, 2), nil
		}
		c.advise(AdvisoryRateMismatch,
			"Drop-frame timecode format (%s) used with non-drop-frame rate %s fps. Calculating as non-drop-frame timecode.",
			text, formatRate(rate))
	}

	return roundPlaces(nonDropFrames(tc.Components, rate)/rate, 2), nil
}

// nonDropFrames counts frames with the rate itself as the radix.
func nonDropFrames(c Components, fps float64) float64 {
	frames := float64(c.Frames)
	frames += float64(c.Seconds) * fps
	frames += float64(c.Minutes) * fps * 60
	frames += float64(c.Hours) * fps * 60 * 60
	return frames
}

// SecondsFromNumber is the numeric passthrough: a value already in seconds
// needs no rate and is returned unchanged.
func SecondsFromNumber(seconds float64) float64 {
	return seconds
}

// ShortTimecode converts a label to hh:mm:ss at rate. With DropFrameAuto the
// output is drop-frame exactly when text contains a semicolon.
func (c *Converter) ShortTimecode(text string, rate float64, mode DropFrameMode) (string, error) {
	if mode == DropFrameAuto {
		mode = DropFrameOff
		if IsDropFrameTimecode(text) {
			mode = DropFrameOn
		}
	}

	seconds, err := c.TimecodeToSeconds(text, rate)
	if err != nil {
		return "", err
	}
	return c.ShortTimecodeFromSeconds(seconds, rate, mode)
}

// ShortTimecodeFromSeconds converts seconds to hh:mm:ss. Zero seconds is
// always "00:00:00". With DropFrameAuto a numeric input is rendered
// non-drop.
func (c *Converter) ShortTimecodeFromSeconds(seconds, rate float64, mode DropFrameMode) (string, error) {
	if seconds == 0 {
		return "00:00:00", nil
	}
	if mode == DropFrameAuto {
		mode = DropFrameOff
	}
	tc, err := c.Timecode(seconds, rate, mode)
	if err != nil {
		return "", err
	}
	return tc.Short(), nil
}

// ValidateTimecode validates text like the package function and forwards
// each warning to the sink.
func (c *Converter) ValidateTimecode(text string, rate float64) ValidationResult {
	res := ValidateTimecode(text, rate)
	for _, w := range res.Warnings {
		c.sink.Advise(Advisory{Code: AdvisoryValidationWarning, Message: w})
	}
	return res
}

// precisionRound keeps the given number of significant digits.
func precisionRound(x float64, digits int) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'g', digits, 64), 64)
	if err != nil {
		return x
	}
	return v
}

// roundPlaces rounds x to the given number of decimal places.
func roundPlaces(x float64, places int) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		return x
	}
	return v
}

var std = New()

// SecondsToTimecode converts seconds to a label, discarding advisories.
func SecondsToTimecode(seconds, rate float64, mode DropFrameMode) (string, error) {
	return std.SecondsToTimecode(seconds, rate, mode)
}

// TimecodeToSeconds converts a label to seconds, discarding advisories.
func TimecodeToSeconds(text string, rate float64) (float64, error) {
	return std.TimecodeToSeconds(text, rate)
}

// ShortTimecode converts a label to hh:mm:ss, discarding advisories.
func ShortTimecode(text string, rate float64, mode DropFrameMode) (string, error) {
	return std.ShortTimecode(text, rate, mode)
}

// ShortTimecodeFromSeconds converts seconds to hh:mm:ss, discarding advisories.
func ShortTimecodeFromSeconds(seconds, rate float64, mode DropFrameMode) (string, error) {
	return std.ShortTimecodeFromSeconds(seconds, rate, mode)
}
