package repositories

import "errors"

var (
	// ErrNotFound indicates no row matched the lookup. For code lookups this
	// is the expected wrong-code path, not a failure.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the write would violate a uniqueness constraint,
	// such as an access code already in use.
	ErrConflict = errors.New("record conflict")
)
