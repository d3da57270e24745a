package scoringservice

import (
	"errors"
	"fmt"
)

var (
	// ErrGameNotFound is returned when no game is stored under the id.
	ErrGameNotFound = errors.New("game not found")

	// ErrScoreboardNotFound is returned when a game has never been scored.
	ErrScoreboardNotFound = errors.New("scoreboard not found")

	// ErrEmptySnapshot is returned when no snapshot was supplied.
	ErrEmptySnapshot = errors.New("snapshot is empty")
)

// ImportError describes a scorecard file that could not be turned into a game.
type ImportError struct {
	Filename string
	Code     string
	Err      error
}

func (e *ImportError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("import %s (%s): %v", e.Filename, e.Code, e.Err)
	}
	return fmt.Sprintf("import %s (%s)", e.Filename, e.Code)
}

func (e *ImportError) Unwrap() error { return e.Err }
