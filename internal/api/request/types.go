package request

import (
	"encoding/json"

	"github.com/mcoot/drawit/internal/model"
)

// JoinRequest is the request body for joining the lobby
type JoinRequest struct {
	Name string `json:"name"`
}

// LeaveRequest is the request body for leaving the lobby
type LeaveRequest struct {
	PlayerID model.PlayerID `json:"playerId"`
}

// ActionRequest is the request body for a player action.
// Payload is decoded according to Type.
type ActionRequest struct {
	PlayerID model.PlayerID  `json:"playerId"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}
