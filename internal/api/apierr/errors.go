package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mcoot/drawit/internal/model"
)

// ErrorResponse is the body of every rejected request
type ErrorResponse struct {
	OK      bool   `json:"ok"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnknownPlayer       = "UNKNOWN_PLAYER"
	CodeLobbyFull           = "LOBBY_FULL"
	CodeAlreadyActive       = "ALREADY_ACTIVE"
	CodeInsufficientPlayers = "INSUFFICIENT_PLAYERS"
	CodeNoActiveRound       = "NO_ACTIVE_ROUND"
	CodeDrawerCannotGuess   = "DRAWER_CANNOT_GUESS"
	CodeAlreadyGuessed      = "ALREADY_GUESSED"
	CodeEmptyGuess          = "EMPTY_GUESS"
	CodeNotDrawer           = "NOT_DRAWER"
	CodeUnknownAction       = "UNKNOWN_ACTION"
	CodeStreamUnsupported   = "STREAM_UNSUPPORTED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an error body
type httpError struct {
	status int
	code   string
	msg    string
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.msg
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Code: he.code, Message: he.msg})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var full *model.LobbyFullError
	if errors.As(err, &full) {
		return &httpError{http.StatusForbidden, CodeLobbyFull, fmt.Sprintf("Lobby full. Max %d players.", full.Max)}
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &httpError{http.StatusBadRequest, CodeInvalidRequest, "Invalid request."}
	}

	switch {
	case errors.Is(err, model.ErrInvalidPayload):
		return &httpError{http.StatusBadRequest, CodeInvalidRequest, "Invalid request."}
	case errors.Is(err, model.ErrUnknownPlayer):
		return &httpError{http.StatusUnauthorized, CodeUnknownPlayer, "Unknown player."}
	case errors.Is(err, model.ErrLobbyFull):
		return &httpError{http.StatusForbidden, CodeLobbyFull, "Lobby full."}

	// State conflicts are reported to the requester only
	case errors.Is(err, model.ErrAlreadyActive):
		return &httpError{http.StatusConflict, CodeAlreadyActive, "A round is already in progress."}
	case errors.Is(err, model.ErrInsufficientPlayers):
		return &httpError{http.StatusConflict, CodeInsufficientPlayers, "Need at least 2 players to start."}
	case errors.Is(err, model.ErrNoActiveRound):
		return &httpError{http.StatusConflict, CodeNoActiveRound, "No active round."}
	case errors.Is(err, model.ErrDrawerCannotGuess):
		return &httpError{http.StatusConflict, CodeDrawerCannotGuess, "Drawer cannot guess."}
	case errors.Is(err, model.ErrAlreadyGuessed):
		return &httpError{http.StatusConflict, CodeAlreadyGuessed, "Already guessed correctly."}
	case errors.Is(err, model.ErrEmptyGuess):
		return &httpError{http.StatusConflict, CodeEmptyGuess, "Empty guess ignored."}
	case errors.Is(err, model.ErrNotDrawer):
		return &httpError{http.StatusConflict, CodeNotDrawer, "Only the drawer can do that."}
	case errors.Is(err, model.ErrUnknownAction):
		return &httpError{http.StatusConflict, CodeUnknownAction, "Unknown action."}

	default:
		return &httpError{http.StatusInternalServerError, CodeInternalError, "Internal server error."}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, CodeInvalidRequest, message}
}

// NewStreamUnsupportedError is returned when the response cannot be streamed
func NewStreamUnsupportedError() error {
	return &httpError{http.StatusInternalServerError, CodeStreamUnsupported, "Streaming unsupported."}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, CodeInternalError, "Internal server error."}
}
