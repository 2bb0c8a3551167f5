package sharedclustering

import "errors"

var (
	// ErrInvalidConfig is wrapped by every configuration validation error.
	ErrInvalidConfig = errors.New("sharedclustering: invalid config")

	// ErrUnknownMetric is returned for an unregistered metric name.
	ErrUnknownMetric = errors.New("sharedclustering: unknown distance metric")
)
