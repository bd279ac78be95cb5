package round

import (
	"log/slog"

	"github.com/mcoot/drawit/internal/dependencies/clock"
	"github.com/mcoot/drawit/internal/fanout"
	"github.com/mcoot/drawit/internal/model"
	"github.com/mcoot/drawit/internal/services/roster"
	"github.com/mcoot/drawit/internal/services/scoring"
	"github.com/mcoot/drawit/internal/services/vocabulary"
)

// MinPlayers is the number of players needed to start a round
const MinPlayers = 2

// GuessOutcome describes the effect of an accepted guess
type GuessOutcome struct {
	Correct bool
	Points  int
	Order   int  // 1-based placement, zero when incorrect
	Ended   bool // the guess completed the round
}

// Controller runs the round state machine: Idle and Active.
// It is not safe for concurrent use; the owning session serializes access.
type Controller struct {
	roster     *roster.Roster
	bus        *fanout.Bus
	vocabulary *vocabulary.Service
	scoring    *scoring.Service
	clock      clock.Clock
	logger     *slog.Logger

	round      model.Round
	drawerName string
	onEnded    func(model.RoundSummary)
}

// NewController creates a new RoundController in the Idle state
func NewController(
	roster *roster.Roster,
	bus *fanout.Bus,
	vocabulary *vocabulary.Service,
	scoring *scoring.Service,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		roster:     roster,
		bus:        bus,
		vocabulary: vocabulary,
		scoring:    scoring,
		clock:      clock,
		logger:     logger.With(slog.String("component", "round")),
	}
}

// OnEnded sets a callback that receives the summary of every finished round
func (c *Controller) OnEnded(fn func(model.RoundSummary)) {
	c.onEnded = fn
}

// View returns the public round metadata
func (c *Controller) View() model.RoundView {
	return c.round.View()
}

// Active reports whether a round is running
func (c *Controller) Active() bool {
	return c.round.Active
}

// IsDrawer reports whether the player is drawing in the active round
func (c *Controller) IsDrawer(id model.PlayerID) bool {
	return c.round.IsDrawer(id)
}

// StartRound moves from Idle to Active with the next drawer in turn order
func (c *Controller) StartRound(requester model.PlayerID) (model.RoundView, error) {
	if c.round.Active {
		return model.RoundView{}, model.ErrAlreadyActive
	}
	if c.roster.Len() < MinPlayers {
		return model.RoundView{}, model.ErrInsufficientPlayers
	}

	drawer, ok := c.roster.NextDrawer()
	if !ok {
		return model.RoundView{}, model.ErrInsufficientPlayers
	}

	c.round = model.Round{
		Active:    true,
		Number:    c.round.Number + 1,
		Word:      c.vocabulary.Pick(),
		DrawerID:  drawer.ID,
		Guessed:   []model.PlayerID{},
		StartedAt: c.clock.Now(),
	}
	c.drawerName = drawer.Name

	c.logger.Info("round started",
		slog.Int("round", c.round.Number),
		slog.String("drawer_id", string(drawer.ID)),
		slog.String("requested_by", string(requester)),
	)

	c.bus.Emit(model.RoundStartedEvent{
		DrawerID:    drawer.ID,
		DrawerName:  drawer.Name,
		RoundNumber: c.round.Number,
	}, fanout.All())
	c.bus.Emit(model.WordEvent{Word: c.round.Word}, fanout.Only(drawer.ID))

	return c.round.View(), nil
}

// EndRound reveals the word and returns to Idle. Returns false without
// emitting anything if no round is running.
func (c *Controller) EndRound(reason model.EndReason) bool {
	if !c.round.Active {
		return false
	}

	summary := model.RoundSummary{
		Number:     c.round.Number,
		DrawerID:   c.round.DrawerID,
		DrawerName: c.drawerName,
		Word:       c.round.Word,
		Reason:     reason,
		Guessers:   append([]model.GuessAward(nil), c.round.Awards...),
		StartedAt:  c.round.StartedAt,
		EndedAt:    c.clock.Now(),
	}

	c.round = model.Round{Number: c.round.Number}
	c.drawerName = ""

	c.logger.Info("round ended",
		slog.Int("round", summary.Number),
		slog.String("reason", string(reason)),
		slog.Int("correct_guesses", len(summary.Guessers)),
		slog.Duration("duration", summary.EndedAt.Sub(summary.StartedAt)),
	)

	c.bus.Emit(model.RoundEndedEvent{Reason: reason, Word: summary.Word}, fanout.All())

	if c.onEnded != nil {
		c.onEnded(summary)
	}
	return true
}

// EvaluateGuess checks a guess against the secret word. Correct guesses score
// by placement and are announced without the word; incorrect ones are relayed
// as chat. The caller must have authenticated the player.
func (c *Controller) EvaluateGuess(id model.PlayerID, text string) (GuessOutcome, error) {
	if !c.round.Active {
		return GuessOutcome{}, model.ErrNoActiveRound
	}
	if id == c.round.DrawerID {
		return GuessOutcome{}, model.ErrDrawerCannotGuess
	}
	if c.vocabulary.Normalize(text) == "" {
		return GuessOutcome{}, model.ErrEmptyGuess
	}
	if c.round.HasGuessed(id) {
		return GuessOutcome{}, model.ErrAlreadyGuessed
	}
	guesser, ok := c.roster.Get(id)
	if !ok {
		return GuessOutcome{}, model.ErrUnknownPlayer
	}

	if !c.vocabulary.Matches(text, c.round.Word) {
		c.logger.Debug("incorrect guess",
			slog.Int("round", c.round.Number),
			slog.String("player_id", string(id)))
		c.bus.Emit(model.ChatEvent{
			From:    guesser.Name,
			Message: text,
			Type:    model.ChatGuess,
		}, fanout.All())
		return GuessOutcome{}, nil
	}

	placement := len(c.round.Guessed)
	points := c.scoring.PlacementPoints(placement)
	bonus := c.scoring.DrawerBonus()

	c.round.Guessed = append(c.round.Guessed, id)
	c.round.Awards = append(c.round.Awards, model.GuessAward{
		PlayerID:   id,
		PlayerName: guesser.Name,
		Points:     points,
		Order:      placement + 1,
	})
	c.roster.Award(id, points)
	c.roster.Award(c.round.DrawerID, bonus)

	c.logger.Info("correct guess",
		slog.Int("round", c.round.Number),
		slog.String("player_id", string(id)),
		slog.Int("order", placement+1),
		slog.Int("points", points),
	)

	c.bus.Emit(model.GuessResultEvent{
		PlayerID:    id,
		PlayerName:  guesser.Name,
		Points:      points,
		DrawerBonus: bonus,
		Order:       placement + 1,
	}, fanout.All())
	c.bus.Emit(model.PlayersEvent{Players: model.Views(c.roster.Snapshot())}, fanout.All())

	outcome := GuessOutcome{Correct: true, Points: points, Order: placement + 1}
	if len(c.round.Guessed) >= c.scoring.CompletionThreshold(c.roster.Len()) {
		outcome.Ended = c.EndRound(model.ReasonEveryoneGuessed)
	}
	return outcome, nil
}

// PlayerRemoved must be called after a player leaves the roster. If they
// were drawing, the round ends with ReasonDrawerLeft.
func (c *Controller) PlayerRemoved(id model.PlayerID) bool {
	if !c.round.IsDrawer(id) {
		return false
	}
	return c.EndRound(model.ReasonDrawerLeft)
}

// ResendWord sends the secret word to the player again if they are drawing
func (c *Controller) ResendWord(id model.PlayerID) bool {
	if !c.round.IsDrawer(id) {
		return false
	}
	c.bus.Emit(model.WordEvent{Word: c.round.Word}, fanout.Only(id))
	return true
}
