package field

import "errors"

var (
	// ErrInvalidDomain is returned when a grid, time axis or table shape is malformed.
	ErrInvalidDomain = errors.New("invalid domain")

	// ErrIndexOutOfRange is returned for writes outside the table.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrFrozen is returned for writes to a builder that has been frozen.
	ErrFrozen = errors.New("field is frozen")
)
