package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	w      io.Writer
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(w io.Writer, format string) *Output {
	return &Output{w: w, format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case JoinResult:
		o.printJoinResult(v)
	case LeaveResult:
		o.printLeaveResult(v)
	case ActionResult:
		o.printActionResult(v)
	case State:
		o.printState(v)
	case History:
		o.printHistory(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Round response type
type Round struct {
	Active      bool     `json:"active"`
	RoundNumber int      `json:"roundNumber"`
	DrawerID    string   `json:"drawerId,omitempty"`
	Guessed     []string `json:"guessed"`
}

// JoinResult response type
type JoinResult struct {
	Player     Player `json:"player"`
	Round      Round  `json:"round"`
	MaxPlayers int    `json:"maxPlayers"`
}

// LeaveResult response type
type LeaveResult struct {
	OK      bool `json:"ok"`
	Removed bool `json:"removed"`
}

// ActionResult response type
type ActionResult struct {
	OK      bool  `json:"ok"`
	Correct *bool `json:"correct,omitempty"`
}

// State response type
type State struct {
	Players     []Player `json:"players"`
	Leaderboard []Player `json:"leaderboard"`
	Round       Round    `json:"round"`
	Connected   int      `json:"connected"`
	MaxPlayers  int      `json:"maxPlayers"`
}

// Guesser response type
type Guesser struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Points     int    `json:"points"`
	Order      int    `json:"order"`
}

// RoundSummary response type
type RoundSummary struct {
	Number     int       `json:"number"`
	DrawerID   string    `json:"drawerId"`
	DrawerName string    `json:"drawerName"`
	Word       string    `json:"word"`
	Reason     string    `json:"reason"`
	Guessers   []Guesser `json:"guessers"`
	StartedAt  time.Time `json:"startedAt"`
	EndedAt    time.Time `json:"endedAt"`
}

// History response type
type History struct {
	Rounds []RoundSummary `json:"rounds"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printJoinResult(j JoinResult) {
	o.printf("Joined as %s (%s)\n", j.Player.Name, j.Player.ID)
	o.printf("Lobby capacity: %d\n", j.MaxPlayers)
	o.printRound(j.Round, nil)
}

func (o *Output) printLeaveResult(l LeaveResult) {
	if l.Removed {
		o.printf("Left the lobby\n")
	} else {
		o.printf("Not in the lobby\n")
	}
}

func (o *Output) printActionResult(a ActionResult) {
	switch {
	case a.Correct == nil:
		o.printf("OK\n")
	case *a.Correct:
		o.printf("Correct!\n")
	default:
		o.printf("Not quite\n")
	}
}

func (o *Output) printState(s State) {
	names := make(map[string]string, len(s.Players))
	for _, p := range s.Players {
		names[p.ID] = p.Name
	}

	o.printRound(s.Round, names)
	o.printf("Players (%d/%d, %d connected):\n", len(s.Players), s.MaxPlayers, s.Connected)
	for i, p := range s.Leaderboard {
		marker := ""
		if s.Round.Active && p.ID == s.Round.DrawerID {
			marker = " [drawing]"
		}
		o.printf("  %d. %s - %d pts%s\n", i+1, p.Name, p.Score, marker)
	}
}

func (o *Output) printRound(r Round, names map[string]string) {
	if !r.Active {
		o.printf("Round: idle (%d played)\n", r.RoundNumber)
		return
	}
	drawer := r.DrawerID
	if name, ok := names[drawer]; ok {
		drawer = name
	}
	o.printf("Round %d: %s is drawing, %d guessed\n", r.RoundNumber, drawer, len(r.Guessed))
}

func (o *Output) printHistory(h History) {
	if len(h.Rounds) == 0 {
		o.printf("No rounds played yet\n")
		return
	}
	for _, r := range h.Rounds {
		o.printf("Round %d: %q drawn by %s (%s)\n", r.Number, r.Word, r.DrawerName, r.Reason)
		guessers := make([]string, 0, len(r.Guessers))
		for _, g := range r.Guessers {
			guessers = append(guessers, fmt.Sprintf("%s +%d", g.PlayerName, g.Points))
		}
		if len(guessers) > 0 {
			o.printf("  Guessed by: %s\n", strings.Join(guessers, ", "))
		}
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	o.printf("Status: %s\n", h.Status)
}
