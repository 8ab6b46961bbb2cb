package repository

import "errors"

var (
	// ErrNotFound is returned when nothing is stored at a path
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an optimistic concurrency check fails
	// and the retry budget for the key is spent
	ErrConflict = errors.New("conflict: value was modified by another writer")

	// ErrAbort is returned by an UpdateFunc to leave the stored value untouched
	ErrAbort = errors.New("update aborted")

	// ErrInvalidInput is returned when a path or value is malformed
	ErrInvalidInput = errors.New("invalid input")
)
