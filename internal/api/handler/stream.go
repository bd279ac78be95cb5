package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/drawit/internal/api/apierr"
	"github.com/mcoot/drawit/internal/api/middleware"
	"github.com/mcoot/drawit/internal/session"
	"github.com/mcoot/drawit/internal/transport/sse"
	"github.com/mcoot/drawit/internal/transport/ws"
)

// StreamHandler attaches push channels. Routes must sit behind middleware.Player.
type StreamHandler struct {
	session *session.Session
	logger  *slog.Logger
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(s *session.Session, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		session: s,
		logger:  logger.With(slog.String("component", "stream")),
	}
}

// Events handles GET /api/v1/stream?playerId=
func (h *StreamHandler) Events(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	if !sse.Supported(w) {
		WriteError(w, apierr.NewStreamUnsupportedError())
		return
	}

	stream := sse.NewStream(playerID)
	if err := h.session.Connect(r.Context(), playerID, stream); err != nil {
		WriteError(w, err)
		return
	}
	defer h.session.Disconnect(r.Context(), playerID, stream)

	h.logger.Info("event stream opened", slog.String("player_id", string(playerID)))
	if err := sse.Serve(w, r, stream); err != nil {
		h.logger.Debug("event stream write failed",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()))
	}
	h.logger.Info("event stream closed", slog.String("player_id", string(playerID)))
}

// Socket handles GET /api/v1/ws?playerId=
func (h *StreamHandler) Socket(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	conn, err := ws.Upgrade(w, r, playerID)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()))
		return
	}

	// The player may have left between the check and the upgrade
	if err := h.session.Connect(r.Context(), playerID, conn); err != nil {
		conn.Reject("Unknown player.")
		return
	}
	defer h.session.Disconnect(r.Context(), playerID, conn)

	h.logger.Info("websocket opened", slog.String("player_id", string(playerID)))
	conn.Run()
	h.logger.Info("websocket closed", slog.String("player_id", string(playerID)))
}
