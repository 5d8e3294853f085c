package matching

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvalidArgument marks malformed caller input such as a profile
	// without an id or a negative elapsed time.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownPolicy is returned when a scoring policy name is not recognised.
	ErrUnknownPolicy = errors.New("unknown scoring policy")
)
