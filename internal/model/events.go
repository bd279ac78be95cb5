package model

// EventKind names an event pushed to clients
type EventKind string

const (
	EventWelcome      EventKind = "welcome"
	EventPlayers      EventKind = "players"
	EventChat         EventKind = "chat"
	EventRoundStarted EventKind = "roundStarted"
	EventRoundEnded   EventKind = "roundEnded"
	EventWord         EventKind = "word"
	EventGuessResult  EventKind = "guessResult"
	EventDraw         EventKind = "draw"
	EventClear        EventKind = "clear"
	EventPing         EventKind = "ping"
)

// Event is a server-to-client push message. The set of events is closed:
// only the types in this file implement it.
type Event interface {
	Kind() EventKind
	event()
}

// ChatType distinguishes announcements from relayed guesses
type ChatType string

const (
	ChatSystem ChatType = "system"
	ChatGuess  ChatType = "guess"
)

// WelcomeEvent is sent once to a channel when it opens
type WelcomeEvent struct {
	Players []PlayerView `json:"players"`
	Round   RoundView    `json:"round"`
}

// PlayersEvent carries the roster after a membership or score change
type PlayersEvent struct {
	Players []PlayerView `json:"players"`
}

// ChatEvent is an announcement or an incorrect guess
type ChatEvent struct {
	From    string   `json:"from,omitempty"`
	Message string   `json:"message"`
	Type    ChatType `json:"type"`
}

// RoundStartedEvent announces a new round without its word
type RoundStartedEvent struct {
	DrawerID    PlayerID `json:"drawerId"`
	DrawerName  string   `json:"drawerName"`
	RoundNumber int      `json:"roundNumber"`
}

// RoundEndedEvent announces the end of a round and reveals the word
type RoundEndedEvent struct {
	Reason EndReason `json:"reason"`
	Word   string    `json:"word"`
}

// WordEvent is sent to the drawer only
type WordEvent struct {
	Word string `json:"word"`
}

// GuessResultEvent announces a correct guess
type GuessResultEvent struct {
	PlayerID    PlayerID `json:"playerId"`
	PlayerName  string   `json:"playerName"`
	Points      int      `json:"points"`
	DrawerBonus int      `json:"drawerBonus"`
	Order       int      `json:"order"`
}

// DrawEvent relays one stroke segment from the drawer
type DrawEvent struct {
	Stroke
}

// ClearEvent tells clients to wipe the board
type ClearEvent struct{}

// PingEvent keeps a channel alive
type PingEvent struct{}

func (WelcomeEvent) Kind() EventKind      { return EventWelcome }
func (PlayersEvent) Kind() EventKind      { return EventPlayers }
func (ChatEvent) Kind() EventKind         { return EventChat }
func (RoundStartedEvent) Kind() EventKind { return EventRoundStarted }
func (RoundEndedEvent) Kind() EventKind   { return EventRoundEnded }
func (WordEvent) Kind() EventKind         { return EventWord }
func (GuessResultEvent) Kind() EventKind  { return EventGuessResult }
func (DrawEvent) Kind() EventKind         { return EventDraw }
func (ClearEvent) Kind() EventKind        { return EventClear }
func (PingEvent) Kind() EventKind         { return EventPing }

func (WelcomeEvent) event()      {}
func (PlayersEvent) event()      {}
func (ChatEvent) event()         {}
func (RoundStartedEvent) event() {}
func (RoundEndedEvent) event()   {}
func (WordEvent) event()         {}
func (GuessResultEvent) event()  {}
func (DrawEvent) event()         {}
func (ClearEvent) event()        {}
func (PingEvent) event()         {}
