package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/drawit/internal/api/handler"
	"github.com/mcoot/drawit/internal/api/middleware"
	"github.com/mcoot/drawit/internal/api/response"
	"github.com/mcoot/drawit/internal/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger    *slog.Logger
	Session   *session.Session
	PublicURL string // QR code target; derived from the request when empty
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	lobbyHandler := handler.NewLobbyHandler(cfg.Session, cfg.Logger)
	gameHandler := handler.NewGameHandler(cfg.Session, cfg.Logger)
	streamHandler := handler.NewStreamHandler(cfg.Session, cfg.Logger)
	qrHandler := handler.NewQRHandler(cfg.PublicURL, cfg.Logger)

	// Create middleware
	playerMiddleware := middleware.Player(cfg.Session)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Lobby routes
	api.HandleFunc("/join", lobbyHandler.Join).Methods(http.MethodPost)
	api.HandleFunc("/leave", lobbyHandler.Leave).Methods(http.MethodPost)
	api.HandleFunc("/state", lobbyHandler.State).Methods(http.MethodGet)

	// Game routes
	api.HandleFunc("/action", gameHandler.Action).Methods(http.MethodPost)
	api.HandleFunc("/history", gameHandler.History).Methods(http.MethodGet)

	// Push channels (registered players only)
	api.Handle("/stream", playerMiddleware(http.HandlerFunc(streamHandler.Events))).Methods(http.MethodGet)
	api.Handle("/ws", playerMiddleware(http.HandlerFunc(streamHandler.Socket))).Methods(http.MethodGet)

	api.HandleFunc("/qr", qrHandler.Code).Methods(http.MethodGet)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
