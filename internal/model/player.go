package model

import "time"

// PlayerID uniquely identifies a player for the lifetime of the session.
// It is an opaque token handed out on join and presented with every action.
type PlayerID string

// MaxNameLength is the maximum display name length in characters
const MaxNameLength = 18

// Player represents a participant in the lobby
type Player struct {
	ID       PlayerID
	Name     string
	Score    int
	JoinedAt time.Time
}

// View returns the public representation of the player
func (p Player) View() PlayerView {
	return PlayerView{
		ID:    p.ID,
		Name:  p.Name,
		Score: p.Score,
	}
}

// PlayerView is the player shape sent to clients
type PlayerView struct {
	ID    PlayerID `json:"id"`
	Name  string   `json:"name"`
	Score int      `json:"score"`
}

// Views converts a roster snapshot into its public form, preserving order
func Views(players []Player) []PlayerView {
	views := make([]PlayerView, 0, len(players))
	for _, p := range players {
		views = append(views, p.View())
	}
	return views
}
