package timecode

import "errors"

var (
	// ErrFrameRateRequired is returned when a textual timecode is converted
	// without a frame rate.
	ErrFrameRateRequired = errors.New("frame rate must be specified when converting timecode strings to seconds")

	// ErrInvalidFrameRate is returned for rates that are not finite and positive.
	ErrInvalidFrameRate = errors.New("frame rate must be a positive number")

	// ErrInvalidDuration is returned for negative or non-finite durations.
	ErrInvalidDuration = errors.New("duration must be a non-negative number of seconds")

	// ErrMalformedTimecode is returned when a timecode field is not an integer.
	ErrMalformedTimecode = errors.New("malformed timecode")
)
