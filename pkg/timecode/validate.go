package timecode

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationResult is the outcome of ValidateTimecode. Findings are data:
// a malformed label is reported here, never as an error return.
type ValidationResult struct {
	Valid      bool        `json:"valid"`
	Errors     []string    `json:"errors"`
	Warnings   []string    `json:"warnings"`
	Format     Format      `json:"format,omitempty"`
	Components *Components `json:"components,omitempty"`
}

const (
	maxHours   = 23
	maxMinutes = 59
	maxSeconds = 59
)

// ValidateTimecode checks text against the timecode grammar and, when rate
// is non-zero, against that frame rate. A rate of zero means no rate was
// supplied; any other rate that is not a finite positive number is an error
// and skips the per-rate checks.
//
// Range checks are independent and all findings are collected. Components
// is set only when there are no errors.
func ValidateTimecode(text string, rate float64) ValidationResult {
	res := ValidationResult{Errors: []string{}, Warnings: []string{}}

	dropFormat := IsDropFrameTimecode(text)
	parts := strings.Split(strings.ReplaceAll(text, ";", ":"), ":")
	if len(parts) != 4 {
		res.Errors = append(res.Errors,
			fmt.Sprintf("Invalid timecode format. Expected hh:mm:ss:ff or hh:mm:ss;ff, got %s", text))
		return res
	}
	res.Format = formatOf(text)

	hours, hoursOK := parseField(parts[0])
	minutes, minutesOK := parseField(parts[1])
	seconds, secondsOK := parseField(parts[2])
	frames, framesOK := parseField(parts[3])

	res.checkRange("Hours", hours, hoursOK, maxHours)
	res.checkRange("Minutes", minutes, minutesOK, maxMinutes)
	res.checkRange("Seconds", seconds, secondsOK, maxSeconds)
	if !framesOK {
		res.Errors = append(res.Errors, "Frames must be a valid non-negative number")
	}

	switch {
	case rate == 0:
	case !validRate(rate):
		res.Errors = append(res.Errors,
			fmt.Sprintf("Invalid frame rate %s fps. Frame rate must be a positive number", formatRate(rate)))
	default:
		maxFrames := NominalFPS(rate) - 1
		if framesOK && frames > maxFrames {
			res.Errors = append(res.Errors,
				fmt.Sprintf("Frames cannot exceed %d for %s fps", maxFrames, formatRate(rate)))
		}

		if dropFormat {
			if !IsDropFrameRate(rate) {
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"Drop-frame format used with non-drop-frame rate %s fps. Drop-frame is only valid for 29.97 and 59.94 fps.",
					formatRate(rate)))
			} else if minutesOK && secondsOK && framesOK {
				if msg, bad := droppedLabel(minutes, seconds, frames, DropQuota(rate)); bad {
					res.Errors = append(res.Errors, msg)
				}
			}
		}
	}

	if dropFormat && rate == 0 {
		res.Warnings = append(res.Warnings, "Drop-frame format detected but no frame rate provided for validation")
	}

	res.Valid = len(res.Errors) == 0
	if res.Valid {
		res.Components = &Components{Hours: hours, Minutes: minutes, Seconds: seconds, Frames: frames}
	}
	return res
}

func parseField(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (r *ValidationResult) checkRange(name string, v int, ok bool, max int) {
	switch {
	case !ok:
		r.Errors = append(r.Errors, name+" must be a valid non-negative number")
	case v > max:
		r.Errors = append(r.Errors, fmt.Sprintf("%s cannot exceed %d", name, max))
	}
}

// droppedLabel reports whether seconds;frames names a label skipped at the
// start of minute.
func droppedLabel(minutes, seconds, frames, quota int) (string, bool) {
	if seconds != 0 || minutes%10 == 0 || frames >= quota {
		return "", false
	}
	if quota == 2 {
		return fmt.Sprintf("Invalid drop-frame timecode. Frames 00 and 01 don't exist at minute %d", minutes), true
	}
	return fmt.Sprintf("Invalid drop-frame timecode. Frames 00 to %02d don't exist at minute %d", quota-1, minutes), true
}

// Report renders the result for humans, one finding per line.
func (r ValidationResult) Report() string {
	var b strings.Builder
	if r.Valid {
		b.WriteString("valid")
	} else {
		b.WriteString("invalid")
	}
	if r.Format != "" {
		fmt.Fprintf(&b, " (%s)", r.Format)
	}
	b.WriteString("\n")

	if r.Components != nil {
		fmt.Fprintf(&b, "  hours=%d minutes=%d seconds=%d frames=%d\n",
			r.Components.Hours, r.Components.Minutes, r.Components.Seconds, r.Components.Frames)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "  error: %s\n", e)
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", w)
	}
	return b.String()
}
