package cyclic

import "errors"

var (
	// ErrFrameTooShort indicates a frame shorter than the fixed layout minimum.
	ErrFrameTooShort = errors.New("cyclic frame too short")

	// ErrFrameIDMismatch indicates that the frame identifier does not match the
	// channel it was handed to. A protocol error, not a crash.
	ErrFrameIDMismatch = errors.New("frame identifier does not match channel")

	// ErrReplayDetected indicates an inbound cycle counter equal to the last
	// accepted one. The frame is discarded; the session continues.
	ErrReplayDetected = errors.New("duplicate cycle counter, frame replayed")

	// ErrRegionOverflow indicates that the declared data region does not fit
	// the received payload.
	ErrRegionOverflow = errors.New("data region exceeds received payload")

	// ErrPointOutOfRange indicates an addressed point index outside the
	// channel's configured set.
	ErrPointOutOfRange = errors.New("point index out of configured range")

	// ErrWrongDirection indicates an encode on an input channel or a decode on
	// an output channel.
	ErrWrongDirection = errors.New("operation does not match channel direction")

	// ErrPointTruncated indicates a sensor point with fewer bytes than even the
	// legacy format carries.
	ErrPointTruncated = errors.New("sensor point truncated")
)
