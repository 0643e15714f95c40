package services

import "errors"

var (
	// ErrNotAvailable means there is nothing to show: no fresh generation
	// was permitted and no stored completion exists. A normal terminal
	// outcome, not a fault.
	ErrNotAvailable = errors.New("no completion available")

	// ErrGenerationFailed means the external provider was unreachable,
	// timed out, or returned output without a usable context field. The
	// caller may compose the stored-completion fallback on top.
	ErrGenerationFailed = errors.New("generation failed")
)
