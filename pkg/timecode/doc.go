// Package timecode converts between durations in seconds and SMPTE
// timecode labels.
//
// Two label formats are supported:
//
//	HH:MM:SS:FF  non-drop, a plain fixed-radix frame count
//	HH:MM:SS;FF  drop-frame, for the ≈29.97 and ≈59.94 fps rates
//
// Drop-frame timecode skips two (≈29.97) or four (≈59.94) frame labels at
// the start of every minute except minutes divisible by ten, so that the
// label clock tracks wall-clock time. Frames are never dropped, only labels.
//
// Every function in this package is pure. Advisories about questionable
// input (non-drop drift over long durations, drop-frame labels combined with
// a non-drop rate) are delivered to a Sink configured on a Converter and
// never change a returned value.
package timecode
