package model

import "time"

// EndReason records why a round finished
type EndReason string

const (
	ReasonStopped         EndReason = "stopped"          // Ended manually
	ReasonEveryoneGuessed EndReason = "everyone-guessed" // All eligible players guessed
	ReasonDrawerLeft      EndReason = "drawer-left"      // Drawer was removed mid-round
)

// Round holds the state of the current round.
// Word is non-empty iff Active is true.
type Round struct {
	Active    bool
	Number    int
	Word      string
	DrawerID  PlayerID
	Guessed   []PlayerID // Insertion order is placement order
	Awards    []GuessAward
	StartedAt time.Time
}

// HasGuessed reports whether the player is already in the guessed-set
func (r *Round) HasGuessed(id PlayerID) bool {
	for _, g := range r.Guessed {
		if g == id {
			return true
		}
	}
	return false
}

// IsDrawer reports whether the player is drawing in an active round
func (r *Round) IsDrawer(id PlayerID) bool {
	return r.Active && r.DrawerID == id
}

// View returns the public metadata for the round. The word is never included.
func (r *Round) View() RoundView {
	guessed := make([]PlayerID, len(r.Guessed))
	copy(guessed, r.Guessed)
	return RoundView{
		Active:      r.Active,
		RoundNumber: r.Number,
		DrawerID:    r.DrawerID,
		Guessed:     guessed,
	}
}

// RoundView is the round metadata visible to every player
type RoundView struct {
	Active      bool       `json:"active"`
	RoundNumber int        `json:"roundNumber"`
	DrawerID    PlayerID   `json:"drawerId,omitempty"`
	Guessed     []PlayerID `json:"guessed"`
}

// GuessAward records the points given for one correct guess
type GuessAward struct {
	PlayerID   PlayerID `json:"playerId"`
	PlayerName string   `json:"playerName"`
	Points     int      `json:"points"`
	Order      int      `json:"order"`
}

// RoundSummary is the archived record of a finished round
type RoundSummary struct {
	Number     int          `json:"number"`
	DrawerID   PlayerID     `json:"drawerId"`
	DrawerName string       `json:"drawerName"`
	Word       string       `json:"word"`
	Reason     EndReason    `json:"reason"`
	Guessers   []GuessAward `json:"guessers"`
	StartedAt  time.Time    `json:"startedAt"`
	EndedAt    time.Time    `json:"endedAt"`
}
