package filter

import "github.com/pkg/errors"

var (
	// ErrThresholdEstimation is returned when the library does not allow to infer a threshold.
	ErrThresholdEstimation = errors.New(
		"the threshold for loops or uncuts could not be estimated, try running interactively to investigate")
	// ErrInvalidThreshold is returned for negative or malformed user thresholds.
	ErrInvalidThreshold = errors.New("invalid threshold")
)
