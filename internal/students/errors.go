package students

import "errors"

var (
	ErrDuplicateRollNumber = errors.New("roll number already exists")
	ErrNotFound            = errors.New("not found")
	ErrInvalidStatus       = errors.New("invalid status")
	// ErrInvalidRecord is returned for persisted records with more present
	// marks than classes or negative counters.
	ErrInvalidRecord = errors.New("invalid record")
)
