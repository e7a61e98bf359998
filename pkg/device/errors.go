package device

import "errors"

var (
	// ErrUnknownPoint is returned when no device matches the requested
	// control point name or index.
	ErrUnknownPoint = errors.New("device: unknown control point")

	// ErrInvalidPulse is returned for a negative pulse duration.
	ErrInvalidPulse = errors.New("device: invalid pulse duration")

	// ErrTableFull is returned when the device table has no headroom
	// left for discovery.
	ErrTableFull = errors.New("device: table full")
)
