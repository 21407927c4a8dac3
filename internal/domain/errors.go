package domain

import "errors"

var (
	// ErrInvalidChoice is returned before any state is touched.
	ErrInvalidChoice = errors.New("invalid choice")
	// ErrInvalidResult guards the store against results the engine never produces.
	ErrInvalidResult = errors.New("invalid result")
	// ErrStoreUnavailable wraps every persistence failure.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrMigrationFailed is fatal at startup.
	ErrMigrationFailed = errors.New("schema migration failed")
)
