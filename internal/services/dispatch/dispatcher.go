package dispatch

import (
	"log/slog"

	"github.com/mcoot/drawit/internal/fanout"
	"github.com/mcoot/drawit/internal/model"
	"github.com/mcoot/drawit/internal/services/roster"
	"github.com/mcoot/drawit/internal/services/round"
)

// Result acknowledges an accepted action
type Result struct {
	// Correct is set for guesses only
	Correct *bool
}

// Dispatcher authenticates inbound actions and routes them to the round
// state machine or straight to the bus. It is not safe for concurrent use.
type Dispatcher struct {
	roster *roster.Roster
	rounds *round.Controller
	bus    *fanout.Bus
	logger *slog.Logger
}

// New creates a new ActionDispatcher
func New(roster *roster.Roster, rounds *round.Controller, bus *fanout.Bus, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		roster: roster,
		rounds: rounds,
		bus:    bus,
		logger: logger.With(slog.String("component", "dispatch")),
	}
}

// Dispatch applies an action on behalf of a player. Unknown players are
// rejected before any state is touched.
func (d *Dispatcher) Dispatch(id model.PlayerID, action model.Action) (Result, error) {
	if !d.roster.Has(id) {
		return Result{}, model.ErrUnknownPlayer
	}

	switch a := action.(type) {
	case model.GuessAction:
		outcome, err := d.rounds.EvaluateGuess(id, a.Text)
		if err != nil {
			return Result{}, err
		}
		correct := outcome.Correct
		return Result{Correct: &correct}, nil

	case model.StartRoundAction:
		if _, err := d.rounds.StartRound(id); err != nil {
			return Result{}, err
		}
		return Result{}, nil

	case model.EndRoundAction:
		d.rounds.EndRound(model.ReasonStopped)
		return Result{}, nil

	case model.DrawAction:
		if !d.rounds.IsDrawer(id) {
			return Result{}, model.ErrNotDrawer
		}
		// Strokes are best effort; failed sends are handled by the bus.
		d.bus.Emit(model.DrawEvent{Stroke: a.Stroke}, fanout.Except(id))
		return Result{}, nil

	case model.ClearAction:
		if !d.rounds.IsDrawer(id) {
			return Result{}, model.ErrNotDrawer
		}
		d.bus.Emit(model.ClearEvent{}, fanout.All())
		return Result{}, nil

	default:
		d.logger.Warn("unhandled action", slog.Any("action", action))
		return Result{}, model.ErrUnknownAction
	}
}
