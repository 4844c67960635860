package game

import "errors"

var (
	ErrEmptyRoster     = errors.New("roster has no players")
	ErrInvalidRounds   = errors.New("total rounds must be > 0")
	ErrDuplicatePlayer = errors.New("duplicate player id")
)
