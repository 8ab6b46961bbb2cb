package allocation

import "errors"

var (
	// ErrExhausted is returned when every candidate drawn by ClaimRandom
	// was already taken
	ErrExhausted = errors.New("allocation space exhausted")

	// ErrInvalidKey is returned when a key is empty or malformed for its namespace
	ErrInvalidKey = errors.New("invalid allocation key")

	// ErrUnknownNamespace is returned for namespaces the allocator does not manage
	ErrUnknownNamespace = errors.New("unknown allocation namespace")
)
