package dsp

import (
	"errors"
	"fmt"
)

// ErrInvalidLength is returned when a requested buffer or window length is
// not usable (zero, negative, or otherwise nonsensical).
var ErrInvalidLength = errors.New("dsp: invalid length")

// ErrWrongLength indicates a caller-supplied buffer did not have the length
// the operation requires. Unlike a bare sentinel, it carries the expected
// and actual lengths so callers can report a precise diagnostic.
type ErrWrongLength struct {
	Expected int
	Got      int
}

func (e *ErrWrongLength) Error() string {
	return fmt.Sprintf("dsp: wrong length: expected %d, got %d", e.Expected, e.Got)
}

// ErrInvalidConfig indicates a configuration setter rejected its argument.
// Parameter names the setter ("clarity_threshold", "max_input_amplitude",
// "min_volume_absolute", "min_volume_decibels"); Reason explains why the
// value was rejected.
type ErrInvalidConfig struct {
	Parameter string
	Reason    string
}

func (e *ErrInvalidConfig) Error() string {
	return fmt.Sprintf("dsp: invalid config %s: %s", e.Parameter, e.Reason)
}
