package physics

import "errors"

// Domain errors for world construction and configuration.
var (
	// ErrInvalidBody indicates a body with a non-positive or non-finite radius or mass.
	ErrInvalidBody = errors.New("physics: invalid body")

	// ErrInvalidBounds indicates a container with a non-positive or non-finite size.
	ErrInvalidBounds = errors.New("physics: invalid bounds")

	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errors.New("physics: invalid config")
)
