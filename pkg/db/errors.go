package db

import "errors"

var (
	// ErrNotFound is returned when a single-row lookup matches nothing.
	ErrNotFound = errors.New("not found")
	// ErrMalformedRow is returned when a stored row fails validation.
	ErrMalformedRow = errors.New("malformed row")
)
