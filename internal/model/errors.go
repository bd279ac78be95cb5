package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Validation errors
	ErrInvalidPayload = errors.New("invalid request")

	// Player errors
	ErrUnknownPlayer = errors.New("unknown player")
	ErrLobbyFull     = errors.New("lobby is full")

	// Round errors
	ErrAlreadyActive       = errors.New("a round is already in progress")
	ErrInsufficientPlayers = errors.New("need at least 2 players to start")
	ErrNoActiveRound       = errors.New("no active round")
	ErrDrawerCannotGuess   = errors.New("drawer cannot guess")
	ErrAlreadyGuessed      = errors.New("already guessed correctly")
	ErrEmptyGuess          = errors.New("empty guess ignored")
	ErrNotDrawer           = errors.New("only the drawer can do that")

	// Action errors
	ErrUnknownAction = errors.New("unknown action")
)

// IsStateConflict reports whether err rejects an action because of the
// current game state. Such errors are returned to the caller only.
func IsStateConflict(err error) bool {
	for _, target := range []error{
		ErrAlreadyActive,
		ErrInsufficientPlayers,
		ErrNoActiveRound,
		ErrDrawerCannotGuess,
		ErrAlreadyGuessed,
		ErrEmptyGuess,
		ErrNotDrawer,
		ErrUnknownAction,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// LobbyFullError reports the capacity that was reached. It matches ErrLobbyFull.
type LobbyFullError struct {
	Max int
}

func (e *LobbyFullError) Error() string {
	return fmt.Sprintf("lobby full: max %d players", e.Max)
}

func (e *LobbyFullError) Is(target error) bool {
	return target == ErrLobbyFull
}
