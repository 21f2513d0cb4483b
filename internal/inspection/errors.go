package inspection

import "errors"

var (
	// ErrMalformedInput means a detector map does not match the component
	// registry (missing or unknown keys). Fatal to that frame's scoring.
	ErrMalformedInput = errors.New("component map does not match registry")

	// ErrEmptyRun means consolidation was invoked with zero frames.
	ErrEmptyRun = errors.New("no frames to consolidate")

	// ErrInvalidInput means the decision was asked for without full critical
	// component coverage. Fatal to the run, never defaulted.
	ErrInvalidInput = errors.New("incomplete critical component coverage")
)
