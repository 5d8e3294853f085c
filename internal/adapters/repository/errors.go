package repository

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrNotFound       = errors.New("profile not found")
	ErrUnavailable    = errors.New("storage unavailable")
	ErrInvalidProfile = errors.New("invalid profile")
)
