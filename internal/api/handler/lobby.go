package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/drawit/internal/api/request"
	"github.com/mcoot/drawit/internal/api/response"
	"github.com/mcoot/drawit/internal/session"
)

// LobbyHandler handles joining, leaving and viewing the lobby
type LobbyHandler struct {
	session *session.Session
	logger  *slog.Logger
}

// NewLobbyHandler creates a new lobby handler
func NewLobbyHandler(s *session.Session, logger *slog.Logger) *LobbyHandler {
	return &LobbyHandler{
		session: s,
		logger:  logger,
	}
}

// Join handles POST /api/v1/join
func (h *LobbyHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinRequest
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.session.Join(r.Context(), req.Name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.JoinResponseFromResult(result))
}

// Leave handles POST /api/v1/leave. Leaving twice reports removed=false.
func (h *LobbyHandler) Leave(w http.ResponseWriter, r *http.Request) {
	var req request.LeaveRequest
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.PlayerID == "" {
		WriteError(w, NewInvalidRequestError("playerId is required."))
		return
	}

	removed := h.session.Leave(r.Context(), req.PlayerID)
	response.JSON(w, http.StatusOK, response.LeaveResponse{OK: true, Removed: removed})
}

// State handles GET /api/v1/state
func (h *LobbyHandler) State(w http.ResponseWriter, r *http.Request) {
	snapshot := h.session.Snapshot()
	response.JSON(w, http.StatusOK, response.StateFromSnapshot(snapshot, h.session.MaxPlayers()))
}
