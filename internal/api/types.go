package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/zsiec/timecode/pkg/timecode"
)

// FrameRate decodes from a JSON number or from any string ParseFrameRate
// accepts, such as "29.97" or "30000/1001".
type FrameRate float64

func (f *FrameRate) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		rate, err := timecode.ParseFrameRate(s)
		if err != nil {
			return err
		}
		*f = FrameRate(rate)
		return nil
	}

	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("%w: %s", timecode.ErrInvalidFrameRate, b)
	}
	*f = FrameRate(v)
	return nil
}

// Input is a request value that may be a timecode string or a number of
// seconds.
type Input struct {
	Text    string
	Seconds float64
	Numeric bool
}

func (in *Input) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		*in = Input{}
		return json.Unmarshal(b, &in.Text)
	}

	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("%w: expected a timecode string or a number of seconds, got %s",
			timecode.ErrMalformedTimecode, b)
	}
	*in = Input{Seconds: v, Numeric: true}
	return nil
}

func (in Input) MarshalJSON() ([]byte, error) {
	if in.Numeric {
		return json.Marshal(in.Seconds)
	}
	return json.Marshal(in.Text)
}

// FromSecondsRequest is the body of POST /from-seconds.
type FromSecondsRequest struct {
	Seconds   float64   `json:"seconds"`
	FrameRate FrameRate `json:"frame_rate"`
	DropFrame *bool     `json:"drop_frame,omitempty"`
}

// FromSecondsResponse carries the rendered label.
type FromSecondsResponse struct {
	Timecode   string              `json:"timecode"`
	Format     timecode.Format     `json:"format"`
	Components timecode.Components `json:"components"`
	Advisories []timecode.Advisory `json:"advisories"`
}

// ToSecondsRequest is the body of POST /to-seconds. FrameRate is only
// needed when Timecode is a string.
type ToSecondsRequest struct {
	Timecode  Input     `json:"timecode"`
	FrameRate FrameRate `json:"frame_rate,omitempty"`
}

// ToSecondsResponse carries the decoded duration. Format is empty for
// numeric input.
type ToSecondsResponse struct {
	Seconds    float64             `json:"seconds"`
	Format     timecode.Format     `json:"format,omitempty"`
	Advisories []timecode.Advisory `json:"advisories"`
}

// ShortRequest is the body of POST /short.
type ShortRequest struct {
	Input     Input     `json:"input"`
	FrameRate FrameRate `json:"frame_rate"`
	DropFrame *bool     `json:"drop_frame,omitempty"`
}

// ShortResponse carries an hh:mm:ss label.
type ShortResponse struct {
	Timecode   string              `json:"timecode"`
	Advisories []timecode.Advisory `json:"advisories"`
}

// ValidateRequest is the body of POST /validate.
type ValidateRequest struct {
	Timecode  string    `json:"timecode"`
	FrameRate FrameRate `json:"frame_rate,omitempty"`
}

// ValidateResponse is the validation result plus a printable report.
type ValidateResponse struct {
	timecode.ValidationResult
	Report string `json:"report"`
}

// RangesRequest is the body of POST /ranges.
type RangesRequest struct {
	Ranges    []timecode.Range `json:"ranges"`
	FrameRate FrameRate        `json:"frame_rate"`
	DropFrame *bool            `json:"drop_frame,omitempty"`
}

// RangeResult is one converted range. Duration is in seconds.
type RangeResult struct {
	Start    string  `json:"start"`
	End      string  `json:"end"`
	Duration float64 `json:"duration"`
}

// RangesResponse carries one result per requested range, in order.
type RangesResponse struct {
	Ranges     []RangeResult       `json:"ranges"`
	Advisories []timecode.Advisory `json:"advisories"`
}

// RatesResponse lists the known broadcast frame rates.
type RatesResponse struct {
	Rates []timecode.RateInfo `json:"rates"`
}
