package api

import (
	"fmt"

	"github.com/zsiec/timecode/pkg/timecode"
)

// The operations below build each response from a request. Every advisory
// raised is returned in the response and also forwarded to sink.

func newConverter(sink timecode.Sink) (*timecode.Converter, *timecode.Recorder) {
	rec := &timecode.Recorder{}
	if sink == nil {
		return timecode.New(timecode.WithSink(rec)), rec
	}
	return timecode.New(timecode.WithSink(timecode.MultiSink(rec, sink))), rec
}

// FromSeconds converts seconds to a timecode label.
func FromSeconds(sink timecode.Sink, req FromSecondsRequest) (*FromSecondsResponse, error) {
	conv, rec := newConverter(sink)
	tc, err := conv.Timecode(req.Seconds, float64(req.FrameRate), timecode.DropFrameModeOf(req.DropFrame))
	if err != nil {
		return nil, err
	}
	return &FromSecondsResponse{
		Timecode:   tc.String(),
		Format:     tc.Format,
		Components: tc.Components,
		Advisories: rec.Advisories(),
	}, nil
}

// ToSeconds converts a label to seconds. A numeric input passes through
// without a rate and has no format.
func ToSeconds(sink timecode.Sink, req ToSecondsRequest) (*ToSecondsResponse, error) {
	if req.Timecode.Numeric {
		return &ToSecondsResponse{
			Seconds:    timecode.SecondsFromNumber(req.Timecode.Seconds),
			Advisories: []timecode.Advisory{},
		}, nil
	}

	conv, rec := newConverter(sink)
	seconds, err := conv.TimecodeToSeconds(req.Timecode.Text, float64(req.FrameRate))
	if err != nil {
		return nil, err
	}
	format := timecode.FormatNonDrop
	if timecode.IsDropFrameTimecode(req.Timecode.Text) {
		format = timecode.FormatDropFrame
	}
	return &ToSecondsResponse{Seconds: seconds, Format: format, Advisories: rec.Advisories()}, nil
}

// Short renders hh:mm:ss from a label or a number of seconds.
func Short(sink timecode.Sink, req ShortRequest) (*ShortResponse, error) {
	conv, rec := newConverter(sink)
	mode := timecode.DropFrameModeOf(req.DropFrame)
	rate := float64(req.FrameRate)

	var (
		label string
		err   error
	)
	if req.Input.Numeric {
		label, err = conv.ShortTimecodeFromSeconds(req.Input.Seconds, rate, mode)
	} else {
		label, err = conv.ShortTimecode(req.Input.Text, rate, mode)
	}
	if err != nil {
		return nil, err
	}
	return &ShortResponse{Timecode: label, Advisories: rec.Advisories()}, nil
}

// Validate checks a label. Findings are data; validation warnings are
// forwarded to sink.
func Validate(sink timecode.Sink, req ValidateRequest) *ValidateResponse {
	conv, _ := newConverter(sink)
	res := conv.ValidateTimecode(req.Timecode, float64(req.FrameRate))
	return &ValidateResponse{ValidationResult: res, Report: res.Report()}
}

// Ranges converts a batch of [start, end] ranges. The first failing range
// fails the batch.
func Ranges(sink timecode.Sink, req RangesRequest) (*RangesResponse, error) {
	conv, rec := newConverter(sink)
	mode := timecode.DropFrameModeOf(req.DropFrame)

	out := make([]RangeResult, 0, len(req.Ranges))
	for i, rg := range req.Ranges {
		start, end, err := conv.RangeTimecodes(rg, float64(req.FrameRate), mode)
		if err != nil {
			return nil, fmt.Errorf("range %d: %w", i, err)
		}
		out = append(out, RangeResult{Start: start, End: end, Duration: rg.Duration()})
	}
	return &RangesResponse{Ranges: out, Advisories: rec.Advisories()}, nil
}

// Rates lists the known broadcast frame rates.
func Rates() *RatesResponse {
	return &RatesResponse{Rates: timecode.KnownRates()}
}
