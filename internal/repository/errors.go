package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict indicates a uniqueness or concurrency violation, e.g. two
	// transactions mutating the same group membership set.
	ErrConflict = errors.New("repository: conflict")
)
