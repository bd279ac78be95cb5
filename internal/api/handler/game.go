package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mcoot/drawit/internal/api/request"
	"github.com/mcoot/drawit/internal/api/response"
	"github.com/mcoot/drawit/internal/model"
	"github.com/mcoot/drawit/internal/session"
	"github.com/mcoot/drawit/internal/storage"
)

// GameHandler handles player actions and round history
type GameHandler struct {
	session *session.Session
	logger  *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(s *session.Session, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		session: s,
		logger:  logger,
	}
}

// Action handles POST /api/v1/action. The player is authenticated before
// the action payload is looked at.
func (h *GameHandler) Action(w http.ResponseWriter, r *http.Request) {
	var req request.ActionRequest
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.PlayerID == "" || !h.session.HasPlayer(req.PlayerID) {
		WriteError(w, model.ErrUnknownPlayer)
		return
	}

	action, err := model.DecodeAction(req.Type, req.Payload)
	if err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.session.Act(r.Context(), req.PlayerID, action)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ActionResponseFromResult(result))
}

// History handles GET /api/v1/history?limit=N
func (h *GameHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := storage.DefaultCapacity
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteError(w, NewInvalidRequestError("limit must be a positive integer."))
			return
		}
		limit = n
	}

	rounds, err := h.session.History(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list round history", slog.String("error", err.Error()))
		WriteError(w, NewInternalError())
		return
	}
	if rounds == nil {
		rounds = []*model.RoundSummary{}
	}

	response.JSON(w, http.StatusOK, response.History{Rounds: rounds})
}
