package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned by New for a missing or invalid
	// configuration.
	ErrNotConfigured = errors.New("sim: controller not configured")

	// ErrInvalidRun indicates a run with a non-positive duration or timestep.
	ErrInvalidRun = errors.New("sim: invalid run parameters")

	// ErrUnstable indicates a grain position or velocity became NaN or Inf.
	ErrUnstable = errors.New("sim: simulation unstable (state diverged)")
)

// StepError wraps an error with the frame it happened in.
type StepError struct {
	Frame int
	Time  float64
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("frame %d (t=%.3fs): %v", e.Frame, e.Time, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
