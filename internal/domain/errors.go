package domain

import "errors"

var (
	// ErrInvalidMetrics marks a malformed input record. The pool is excluded
	// from the scoring pass and reported; it never aborts the rest of the set.
	ErrInvalidMetrics = errors.New("invalid pool metrics")

	// ErrUnknownFilter marks a filter name missing from the static registry.
	ErrUnknownFilter = errors.New("unknown filter")

	// ErrConfiguration marks an invalid policy configuration. Fatal at
	// startup: scoring must never run with an undefined weighting policy.
	ErrConfiguration = errors.New("invalid configuration")
)
