package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// NTSC29_97 is the nominal 30 fps drop-frame rate (30000/1001).
	NTSC29_97 = 29.97
	// NTSC59_94 is the nominal 60 fps drop-frame rate (60000/1001).
	NTSC59_94 = 59.94

	// dropRateTolerance absorbs binary floating point representation error
	// around the two drop-frame rates.
	dropRateTolerance = 0.01
)

// IsDropFrameRate reports whether rate is one of the two SMPTE drop-frame
// rates (≈29.97 or ≈59.94 fps).
func IsDropFrameRate(rate float64) bool {
	return is2997(rate) || is5994(rate)
}

func is2997(rate float64) bool {
	return math.Abs(rate-NTSC29_97) < dropRateTolerance
}

func is5994(rate float64) bool {
	return math.Abs(rate-NTSC59_94) < dropRateTolerance
}

// DropQuota returns how many frame labels are skipped at the start of each
// dropping minute: 2 for ≈29.97, 4 for ≈59.94 and 0 for every other rate.
func DropQuota(rate float64) int {
	switch {
	case is2997(rate):
		return 2
	case is5994(rate):
		return 4
	default:
		return 0
	}
}

// NominalFPS returns the integer frame radix used for label arithmetic,
// e.g. 30 for 29.97 and 60 for 59.94.
func NominalFPS(rate float64) int {
	return int(math.Round(rate))
}

func validRate(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 0) && !math.IsNaN(rate)
}

// Rational is a frame rate expressed as numerator/denominator.
type Rational struct {
	Num int `json:"numerator"`
	Den int `json:"denominator"`
}

// Float64 returns the floating point representation
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

func (r Rational) String() string {
	if r.Den == 1 {
		return strconv.Itoa(r.Num)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// RateInfo describes a broadcast frame rate.
type RateInfo struct {
	Name      string   `json:"name"`
	Rate      float64  `json:"rate"`
	Rational  Rational `json:"rational"`
	Nominal   int      `json:"nominal_fps"`
	DropFrame bool     `json:"drop_frame"`
	DropQuota int      `json:"drop_quota,omitempty"`
	Standard  string   `json:"standard"`
}

var knownRates = []struct {
	name     string
	display  float64
	rational Rational
	standard string
}{
	{"23.976", 23.976, Rational{Num: 24000, Den: 1001}, "film (NTSC pulldown)"},
	{"24", 24, Rational{Num: 24, Den: 1}, "film"},
	{"25", 25, Rational{Num: 25, Den: 1}, "PAL"},
	{"29.97", NTSC29_97, Rational{Num: 30000, Den: 1001}, "NTSC"},
	{"30", 30, Rational{Num: 30, Den: 1}, "digital"},
	{"50", 50, Rational{Num: 50, Den: 1}, "PAL high frame rate"},
	{"59.94", NTSC59_94, Rational{Num: 60000, Den: 1001}, "NTSC high frame rate"},
	{"60", 60, Rational{Num: 60, Den: 1}, "digital high frame rate"},
}

// KnownRates returns the catalogue of common broadcast frame rates.
func KnownRates() []RateInfo {
	out := make([]RateInfo, 0, len(knownRates))
	for _, k := range knownRates {
		out = append(out, RateInfo{
			Name:      k.name,
			Rate:      k.display,
			Rational:  k.rational,
			Nominal:   NominalFPS(k.display),
			DropFrame: IsDropFrameRate(k.display),
			DropQuota: DropQuota(k.display),
			Standard:  k.standard,
		})
	}
	return out
}

// ParseFrameRate parses a frame rate given as a decimal ("29.97"), a
// rational ("30000/1001") or a rate name with an optional "fps" suffix
// ("59.94fps"). Rational NTSC rates are returned as their conventional
// decimal value (29.97, 59.94, 23.976) so they classify as expected.
func ParseFrameRate(s string) (float64, error) {
	text := strings.TrimSpace(strings.ToLower(s))
	text = strings.TrimSpace(strings.TrimSuffix(text, "fps"))
	if text == "" {
		return 0, fmt.Errorf("%w: empty frame rate", ErrInvalidFrameRate)
	}

	if num, den, ok := strings.Cut(text, "/"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(num))
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFrameRate, s)
		}
		d, err := strconv.Atoi(strings.TrimSpace(den))
		if err != nil || d == 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFrameRate, s)
		}
		r := Rational{Num: n, Den: d}
		for _, k := range knownRates {
			if k.rational == r {
				return k.display, nil
			}
		}
		rate := r.Float64()
		if !validRate(rate) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFrameRate, s)
		}
		return rate, nil
	}

	rate, err := strconv.ParseFloat(text, 64)
	if err != nil || !validRate(rate) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFrameRate, s)
	}
	return rate, nil
}

// formatRate renders a rate the way it is written by hand: 25, 29.97.
func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}
