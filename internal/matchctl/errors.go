package matchctl

import "errors"

var (
	// ErrUnexpectedStatus is returned when the server answers with an
	// unexpected HTTP status.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrProfileNotFound is returned by offline commands for unknown ids.
	ErrProfileNotFound = errors.New("profile not in file")
	// ErrUnknownFormat is returned for unsupported output formats.
	ErrUnknownFormat = errors.New("unknown output format")
)
