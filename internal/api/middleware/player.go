package middleware

import (
	"context"
	"net/http"

	"github.com/mcoot/drawit/internal/api/apierr"
	"github.com/mcoot/drawit/internal/model"
)

type contextKey string

const playerContextKey contextKey = "player"

// PlayerQueryParam names the query parameter identifying the player on stream routes
const PlayerQueryParam = "playerId"

// PlayerChecker reports whether an identity is registered
type PlayerChecker interface {
	HasPlayer(id model.PlayerID) bool
}

// Player rejects requests whose playerId query parameter is not a registered
// player and stores the identity in the request context
func Player(players PlayerChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := model.PlayerID(r.URL.Query().Get(PlayerQueryParam))
			if id == "" || !players.HasPlayer(id) {
				apierr.WriteError(w, model.ErrUnknownPlayer)
				return
			}

			ctx := context.WithValue(r.Context(), playerContextKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPlayerID returns the player identity from the request context
func GetPlayerID(ctx context.Context) (model.PlayerID, bool) {
	id, ok := ctx.Value(playerContextKey).(model.PlayerID)
	return id, ok
}

// MustGetPlayerID returns the player identity or panics
func MustGetPlayerID(ctx context.Context) model.PlayerID {
	id, ok := GetPlayerID(ctx)
	if !ok {
		panic("no player in context - player middleware not applied?")
	}
	return id
}
