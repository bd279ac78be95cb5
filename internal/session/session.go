// Package session owns the game state. Every operation runs under one mutex,
// so transitions never interleave and each one is atomic to every other.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/drawit/internal/dependencies/clock"
	"github.com/mcoot/drawit/internal/dependencies/ident"
	"github.com/mcoot/drawit/internal/dependencies/random"
	"github.com/mcoot/drawit/internal/fanout"
	"github.com/mcoot/drawit/internal/model"
	"github.com/mcoot/drawit/internal/services/dispatch"
	"github.com/mcoot/drawit/internal/services/roster"
	"github.com/mcoot/drawit/internal/services/round"
	"github.com/mcoot/drawit/internal/services/scoring"
	"github.com/mcoot/drawit/internal/services/vocabulary"
	"github.com/mcoot/drawit/internal/storage"
)

// DefaultMaxPlayers is the lobby capacity
const DefaultMaxPlayers = 10

// archiveTimeout bounds writing a finished round to storage
const archiveTimeout = 5 * time.Second

// Config holds session settings
type Config struct {
	MaxPlayers int
	KeepAlive  time.Duration
	Words      []string
}

// DefaultConfig returns the standard lobby settings
func DefaultConfig() Config {
	return Config{
		MaxPlayers: DefaultMaxPlayers,
		KeepAlive:  fanout.DefaultKeepAlive,
	}
}

// JoinResult is returned to a player who joined
type JoinResult struct {
	Player     model.PlayerView
	Round      model.RoundView
	MaxPlayers int
}

// Snapshot is the public view of the whole session
type Snapshot struct {
	Players     []model.PlayerView
	Leaderboard []model.PlayerView
	Round       model.RoundView
	Connected   int
}

// Session composes the roster, round controller, dispatcher and fan-out
type Session struct {
	mu sync.Mutex

	roster     *roster.Roster
	registry   *fanout.Registry
	bus        *fanout.Bus
	rounds     *round.Controller
	dispatcher *dispatch.Dispatcher
	scoring    *scoring.Service
	history    storage.Storage
	maxPlayers int
	logger     *slog.Logger

	// Work queued while the lock is held
	pendingLeaves    []model.PlayerID
	pendingSummaries []model.RoundSummary
}

// New creates a Session
func New(
	cfg Config,
	history storage.Storage,
	clock clock.Clock,
	random random.Random,
	ids ident.Generator,
	logger *slog.Logger,
) *Session {
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = DefaultMaxPlayers
	}

	r := roster.New(ids, random, clock)
	registry := fanout.NewRegistry(cfg.KeepAlive, clock, logger)
	bus := fanout.NewBus(registry, logger)
	scorer := scoring.New()
	rounds := round.NewController(r, bus, vocabulary.New(random, cfg.Words...), scorer, clock, logger)

	s := &Session{
		roster:     r,
		registry:   registry,
		bus:        bus,
		rounds:     rounds,
		dispatcher: dispatch.New(r, rounds, bus, logger),
		scoring:    scorer,
		history:    history,
		maxPlayers: cfg.MaxPlayers,
		logger:     logger.With(slog.String("component", "session")),
	}

	bus.OnFailure(func(id model.PlayerID) {
		s.pendingLeaves = append(s.pendingLeaves, id)
	})
	rounds.OnEnded(func(summary model.RoundSummary) {
		s.pendingSummaries = append(s.pendingSummaries, summary)
	})
	registry.OnDead(func(id model.PlayerID, ch fanout.Channel) {
		s.Disconnect(context.Background(), id, ch)
	})
	return s
}

// MaxPlayers returns the lobby capacity
func (s *Session) MaxPlayers() int {
	return s.maxPlayers
}

// Join adds a player. Fails with ErrLobbyFull at capacity.
func (s *Session) Join(ctx context.Context, name string) (JoinResult, error) {
	var result JoinResult
	err := s.do(ctx, func() error {
		if s.roster.Len() >= s.maxPlayers {
			return &model.LobbyFullError{Max: s.maxPlayers}
		}

		player := s.roster.Join(name)
		s.logger.Info("player joined",
			slog.String("player_id", string(player.ID)),
			slog.String("name", player.Name),
			slog.Int("players", s.roster.Len()))

		s.emitPlayers()
		s.bus.Emit(model.ChatEvent{
			Message: fmt.Sprintf("%s joined the lobby.", player.Name),
			Type:    model.ChatSystem,
		}, fanout.All())

		result = JoinResult{
			Player:     player.View(),
			Round:      s.rounds.View(),
			MaxPlayers: s.maxPlayers,
		}
		return nil
	})
	return result, err
}

// Leave removes a player. Leaving twice is a no-op that reports false.
func (s *Session) Leave(ctx context.Context, id model.PlayerID) bool {
	var removed bool
	_ = s.do(ctx, func() error {
		removed = s.remove(id, "left")
		return nil
	})
	return removed
}

// Act authenticates and applies a player action
func (s *Session) Act(ctx context.Context, id model.PlayerID, action model.Action) (dispatch.Result, error) {
	var result dispatch.Result
	err := s.do(ctx, func() error {
		var err error
		result, err = s.dispatcher.Dispatch(id, action)
		if err != nil {
			s.logger.Debug("action rejected",
				slog.String("player_id", string(id)),
				slog.String("action", string(action.Kind())),
				slog.String("error", err.Error()))
		}
		return err
	})
	return result, err
}

// Connect attaches a push channel for a registered player, replacing any
// previous one. The channel receives a welcome and, if the player is
// drawing, the secret word again.
func (s *Session) Connect(ctx context.Context, id model.PlayerID, ch fanout.Channel) error {
	return s.do(ctx, func() error {
		if !s.roster.Has(id) {
			return model.ErrUnknownPlayer
		}

		s.registry.Attach(id, ch)
		s.bus.Emit(model.WelcomeEvent{
			Players: model.Views(s.roster.Snapshot()),
			Round:   s.rounds.View(),
		}, fanout.Only(id))
		s.rounds.ResendWord(id)
		return nil
	})
}

// Disconnect handles a push channel closing. If ch is still the player's
// current channel, the player is removed; a replaced channel is ignored.
func (s *Session) Disconnect(ctx context.Context, id model.PlayerID, ch fanout.Channel) {
	_ = s.do(ctx, func() error {
		if s.registry.DetachChannel(id, ch) {
			s.remove(id, "disconnected")
		}
		return nil
	})
}

// HasPlayer reports whether the identity is registered
func (s *Session) HasPlayer(id model.PlayerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Has(id)
}

// Snapshot returns the public state of the session
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	players := s.roster.Snapshot()
	return Snapshot{
		Players:     model.Views(players),
		Leaderboard: s.scoring.Leaderboard(players),
		Round:       s.rounds.View(),
		Connected:   s.registry.Len(),
	}
}

// History returns archived rounds, newest first
func (s *Session) History(ctx context.Context, limit int) ([]*model.RoundSummary, error) {
	return s.history.ListRounds(ctx, limit)
}

// Close detaches every channel and waits for their keep-alives to stop.
// Players stay registered; the process is shutting down.
func (s *Session) Close() {
	s.mu.Lock()
	s.registry.CloseAll()
	s.mu.Unlock()
	s.registry.Wait()
}

// do runs fn under the lock, then removes players whose channels failed
// during fn, then archives any rounds that ended once the lock is released.
func (s *Session) do(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	err := fn()
	for len(s.pendingLeaves) > 0 {
		id := s.pendingLeaves[0]
		s.pendingLeaves = s.pendingLeaves[1:]
		s.remove(id, "transport failure")
	}
	summaries := s.pendingSummaries
	s.pendingSummaries = nil
	s.mu.Unlock()

	s.archive(ctx, summaries)
	return err
}

// remove drops the player, closes their channel and ends the round if they
// were drawing. Must be called with the lock held.
func (s *Session) remove(id model.PlayerID, cause string) bool {
	player, ok := s.roster.Remove(id)
	if !ok {
		return false
	}
	s.registry.Detach(id)

	s.logger.Info("player removed",
		slog.String("player_id", string(id)),
		slog.String("name", player.Name),
		slog.String("cause", cause),
		slog.Int("players", s.roster.Len()))

	s.emitPlayers()
	s.bus.Emit(model.ChatEvent{
		Message: fmt.Sprintf("%s left the lobby.", player.Name),
		Type:    model.ChatSystem,
	}, fanout.All())
	s.rounds.PlayerRemoved(id)
	return true
}

func (s *Session) emitPlayers() {
	s.bus.Emit(model.PlayersEvent{Players: model.Views(s.roster.Snapshot())}, fanout.All())
}

func (s *Session) archive(ctx context.Context, summaries []model.RoundSummary) {
	if len(summaries) == 0 || s.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	for i := range summaries {
		if err := s.history.SaveRound(ctx, &summaries[i]); err != nil {
			s.logger.Error("failed to archive round",
				slog.Int("round", summaries[i].Number),
				slog.String("error", err.Error()))
		}
	}
}
