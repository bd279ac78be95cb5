package fanout

import (
	"log/slog"

	"github.com/mcoot/drawit/internal/model"
)

// Predicate selects which players receive an event
type Predicate func(id model.PlayerID) bool

// All selects every attached player
func All() Predicate {
	return func(model.PlayerID) bool { return true }
}

// Except selects every attached player other than id
func Except(id model.PlayerID) Predicate {
	return func(other model.PlayerID) bool { return other != id }
}

// Only selects the single player id
func Only(id model.PlayerID) Predicate {
	return func(other model.PlayerID) bool { return other == id }
}

// SendResult is the outcome of writing one frame to one channel
type SendResult struct {
	PlayerID model.PlayerID
	Err      error
}

// Delivery reports the per-channel outcome of an Emit
type Delivery struct {
	Event   model.EventKind
	Results []SendResult
}

// Sent returns the number of channels written successfully
func (d Delivery) Sent() int {
	n := 0
	for _, r := range d.Results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the players whose channel write failed
func (d Delivery) Failed() []model.PlayerID {
	var failed []model.PlayerID
	for _, r := range d.Results {
		if r.Err != nil {
			failed = append(failed, r.PlayerID)
		}
	}
	return failed
}

// FailureFunc is told about each player whose channel was detached after a failed write
type FailureFunc func(id model.PlayerID)

// Bus writes events to the channels in a Registry
type Bus struct {
	registry  *Registry
	onFailure FailureFunc
	logger    *slog.Logger
}

// NewBus creates a Bus over the registry
func NewBus(registry *Registry, logger *slog.Logger) *Bus {
	return &Bus{
		registry: registry,
		logger:   logger.With(slog.String("component", "bus")),
	}
}

// OnFailure sets the callback for failed writes
func (b *Bus) OnFailure(fn FailureFunc) {
	b.onFailure = fn
}

// Emit encodes evt once and writes it to every attached channel selected by
// to (all channels if nil). A failed write never stops delivery to the others;
// the failing channel is detached and reported through the FailureFunc.
func (b *Bus) Emit(evt model.Event, to Predicate) Delivery {
	delivery := Delivery{Event: evt.Kind()}

	frame, err := Encode(evt)
	if err != nil {
		b.logger.Error("failed to encode event",
			slog.String("event", string(evt.Kind())),
			slog.String("error", err.Error()))
		return delivery
	}
	if to == nil {
		to = All()
	}

	for _, conn := range b.registry.targets(to) {
		err := conn.channel.Send(frame)
		delivery.Results = append(delivery.Results, SendResult{PlayerID: conn.id, Err: err})
		if err == nil {
			continue
		}

		b.logger.Warn("send failed, detaching channel",
			slog.String("event", string(evt.Kind())),
			slog.String("player_id", string(conn.id)),
			slog.String("error", err.Error()))
		if b.registry.DetachChannel(conn.id, conn.channel) && b.onFailure != nil {
			b.onFailure(conn.id)
		}
	}

	b.logger.Debug("event emitted",
		slog.String("event", string(evt.Kind())),
		slog.Int("sent", delivery.Sent()),
		slog.Int("failed", len(delivery.Results)-delivery.Sent()))
	return delivery
}
