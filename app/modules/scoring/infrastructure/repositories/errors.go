package scoringdb

import "errors"

// Sentinel errors for the repository layer.
var (
	// ErrNotFound indicates the requested game or scoreboard does not exist.
	ErrNotFound = errors.New("scoring record not found")

	// ErrNoRowsAffected indicates an UPDATE or DELETE matched no rows.
	ErrNoRowsAffected = errors.New("no rows affected")
)
