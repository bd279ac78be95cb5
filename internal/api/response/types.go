package response

import (
	"github.com/mcoot/drawit/internal/model"
	"github.com/mcoot/drawit/internal/services/dispatch"
	"github.com/mcoot/drawit/internal/session"
)

// JoinResponse is returned to a player who joined. The round never carries the word.
type JoinResponse struct {
	Player     model.PlayerView `json:"player"`
	Round      model.RoundView  `json:"round"`
	MaxPlayers int              `json:"maxPlayers"`
}

// JoinResponseFromResult converts a session.JoinResult
func JoinResponseFromResult(r session.JoinResult) JoinResponse {
	return JoinResponse{
		Player:     r.Player,
		Round:      r.Round,
		MaxPlayers: r.MaxPlayers,
	}
}

// LeaveResponse is returned after a leave request
type LeaveResponse struct {
	OK      bool `json:"ok"`
	Removed bool `json:"removed"`
}

// ActionResponse acknowledges an accepted action
type ActionResponse struct {
	OK      bool  `json:"ok"`
	Correct *bool `json:"correct,omitempty"`
}

// ActionResponseFromResult converts a dispatch.Result
func ActionResponseFromResult(r dispatch.Result) ActionResponse {
	return ActionResponse{OK: true, Correct: r.Correct}
}

// State is the public view of the lobby
type State struct {
	Players     []model.PlayerView `json:"players"`
	Leaderboard []model.PlayerView `json:"leaderboard"`
	Round       model.RoundView    `json:"round"`
	Connected   int                `json:"connected"`
	MaxPlayers  int                `json:"maxPlayers"`
}

// StateFromSnapshot converts a session.Snapshot
func StateFromSnapshot(s session.Snapshot, maxPlayers int) State {
	return State{
		Players:     s.Players,
		Leaderboard: s.Leaderboard,
		Round:       s.Round,
		Connected:   s.Connected,
		MaxPlayers:  maxPlayers,
	}
}

// History lists archived rounds, newest first
type History struct {
	Rounds []*model.RoundSummary `json:"rounds"`
}

// Health is the body of the health check
type Health struct {
	Status string `json:"status"`
}
