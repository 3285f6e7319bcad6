package domain

import "errors"

var (
	// ErrNotFound is returned when a lookup by id, key or name matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrDeleteRestricted is returned when a row still has dependent rows.
	ErrDeleteRestricted = errors.New("record has dependent records")

	// ErrUnknownReference is returned when a write points at a row that does not exist.
	ErrUnknownReference = errors.New("referenced record does not exist")

	ErrInvalidEntity      = errors.New("invalid reference entity")
	ErrInvalidHierarchy   = errors.New("invalid hierarchy entry")
	ErrInvalidWorkProgram = errors.New("invalid work program")
)
