package likeday

import "errors"

var (
	// ErrNoDataForTarget means the target date has no surviving observations
	// for one of the requested features after hour filtering. This is a data
	// gap, distinct from an empty candidate population (which is a valid,
	// empty result).
	ErrNoDataForTarget = errors.New("target date has no data for the requested features")

	// ErrInvalidSpec means the feature spec failed validation before any
	// computation started.
	ErrInvalidSpec = errors.New("invalid feature spec")
)
