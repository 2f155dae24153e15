package timecode

import (
	"fmt"
	"strconv"
	"strings"
)

// Format tags a timecode label as drop-frame or non-drop.
type Format string

const (
	FormatNonDrop   Format = "non-drop"
	FormatDropFrame Format = "drop-frame"
)

// Components is the hours, minutes, seconds and frames of a timecode label.
type Components struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
	Frames  int `json:"frames"`
}

// Timecode is a label together with its format.
type Timecode struct {
	Components
	Format Format `json:"format"`
}

// String renders HH:MM:SS:FF, or HH:MM:SS;FF for drop-frame. Hours are
// padded to two digits but never wrap at 24.
func (t Timecode) String() string {
	sep := ":"
	if t.Format == FormatDropFrame {
		sep = ";"
	}
	return fmt.Sprintf("%02d:%02d:%02d%s%02d", t.Hours, t.Minutes, t.Seconds, sep, t.Frames)
}

// Short renders HH:MM:SS without the frame field.
func (t Timecode) Short() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
}

// IsDropFrameTimecode reports whether text uses the drop-frame separator.
// A semicolon anywhere in the string selects drop-frame, whatever the rate.
func IsDropFrameTimecode(text string) bool {
	return strings.Contains(text, ";")
}

func formatOf(text string) Format {
	if IsDropFrameTimecode(text) {
		return FormatDropFrame
	}
	return FormatNonDrop
}

// splitFields splits a label on both separators.
func splitFields(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool { return r == ':' || r == ';' })
}

// ParseTimecode parses a strict four-field label. Any semicolon marks the
// result as drop-frame. Field ranges are not checked; see ValidateTimecode.
func ParseTimecode(text string) (Timecode, error) {
	parts := strings.Split(strings.ReplaceAll(strings.TrimSpace(text), ";", ":"), ":")
	if len(parts) != 4 {
		return Timecode{}, fmt.Errorf("%w: expected hh:mm:ss:ff or hh:mm:ss;ff, got %q", ErrMalformedTimecode, text)
	}

	var fields [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return Timecode{}, fmt.Errorf("%w: invalid field %q in %q", ErrMalformedTimecode, p, text)
		}
		fields[i] = n
	}

	return Timecode{
		Components: Components{
			Hours:   fields[0],
			Minutes: fields[1],
			Seconds: fields[2],
			Frames:  fields[3],
		},
		Format: formatOf(text),
	}, nil
}

// PadTimeToTimecode expands loosely typed times into hh:mm:ss:ff.
//
//	hh:mm:ss:ff  unchanged
//	hh:mm:ss     hh:mm:ss:00
//	mm:ss, m:ss  00:mm:ss:00
//	mm.ss, m.ss  00:mm:ss:00
//	ss, s        00:00:ss:00
func PadTimeToTimecode(text string) string {
	text = strings.TrimSpace(text)

	switch len(splitFields(text)) {
	case 4:
		return text
	case 3:
		return text + ":00"
	case 2:
		first, _, _ := strings.Cut(text, ":")
		if len(first) == 1 {
			return "00:0" + text + ":00"
		}
		return "00:" + text + ":00"
	case 1:
		if minutes, seconds, ok := strings.Cut(text, "."); ok {
			if len(minutes) == 1 {
				return "00:0" + minutes + ":" + seconds + ":00"
			}
			return "00:" + minutes + ":" + seconds + ":00"
		}
		if len(text) == 1 {
			return "00:00:0" + text + ":00"
		}
		return "00:00:" + text + ":00"
	default:
		return text
	}
}
