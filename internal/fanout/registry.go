package fanout

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/drawit/internal/dependencies/clock"
	"github.com/mcoot/drawit/internal/model"
)

// DefaultKeepAlive is the interval between ping events on an idle channel
const DefaultKeepAlive = 25 * time.Second

// DeadFunc is called when a keep-alive ping fails on a channel
type DeadFunc func(id model.PlayerID, ch Channel)

type connection struct {
	id         model.PlayerID
	channel    Channel
	attachedAt time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

// halt stops the keep-alive loop and closes the channel. Safe to call more than once.
func (c *connection) halt() {
	c.stopOnce.Do(func() {
		close(c.stop)
		c.channel.Close()
	})
}

// Registry maps players to their open push channel
type Registry struct {
	mu        sync.RWMutex
	conns     map[model.PlayerID]*connection
	keepAlive time.Duration
	ping      Frame
	onDead    DeadFunc
	clock     clock.Clock
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// NewRegistry creates a Registry that pings every keepAlive
func NewRegistry(keepAlive time.Duration, clock clock.Clock, logger *slog.Logger) *Registry {
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	ping, _ := Encode(model.PingEvent{})
	return &Registry{
		conns:     make(map[model.PlayerID]*connection),
		keepAlive: keepAlive,
		ping:      ping,
		clock:     clock,
		logger:    logger.With(slog.String("component", "registry")),
	}
}

// OnDead sets the callback for channels whose keep-alive fails.
// It must be set before the first Attach.
func (r *Registry) OnDead(fn DeadFunc) {
	r.onDead = fn
}

// Attach registers ch for the player and starts its keep-alive. A channel
// already attached for the player is detached and closed first; the result
// reports whether that happened.
func (r *Registry) Attach(id model.PlayerID, ch Channel) bool {
	conn := &connection{
		id:         id,
		channel:    ch,
		attachedAt: r.clock.Now(),
		stop:       make(chan struct{}),
	}
	ticker := r.clock.NewTicker(r.keepAlive)

	r.mu.Lock()
	previous, replaced := r.conns[id]
	r.conns[id] = conn
	total := len(r.conns)
	r.mu.Unlock()

	if replaced {
		previous.halt()
	}

	r.wg.Add(1)
	go r.runKeepAlive(conn, ticker)

	r.logger.Info("channel attached",
		slog.String("player_id", string(id)),
		slog.Bool("replaced", replaced),
		slog.Int("total_channels", total))
	return replaced
}

// Detach stops the player's keep-alive and closes their channel. Idempotent.
func (r *Registry) Detach(id model.PlayerID) bool {
	r.mu.Lock()
	conn, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	r.release(conn)
	return true
}

// DetachChannel detaches the player only if ch is still their current
// channel. A channel that was already replaced is left alone.
func (r *Registry) DetachChannel(id model.PlayerID, ch Channel) bool {
	r.mu.Lock()
	conn, ok := r.conns[id]
	if ok && conn.channel == ch {
		delete(r.conns, id)
	} else {
		ok = false
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	r.release(conn)
	return true
}

// IsOpen reports whether the player has an attached channel
func (r *Registry) IsOpen(id model.PlayerID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[id]
	return ok
}

// Len returns the number of attached channels
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// CloseAll detaches every channel
func (r *Registry) CloseAll() {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[model.PlayerID]*connection)
	r.mu.Unlock()

	for _, conn := range conns {
		conn.halt()
	}
	r.logger.Info("all channels closed", slog.Int("count", len(conns)))
}

// Wait blocks until every keep-alive loop has exited. Callers must not hold
// a lock that a DeadFunc acquires.
func (r *Registry) Wait() {
	r.wg.Wait()
}

// targets returns the attached connections selected by pred
func (r *Registry) targets(pred Predicate) []*connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*connection, 0, len(r.conns))
	for id, conn := range r.conns {
		if pred(id) {
			out = append(out, conn)
		}
	}
	return out
}

func (r *Registry) release(conn *connection) {
	conn.halt()
	r.logger.Info("channel detached",
		slog.String("player_id", string(conn.id)),
		slog.Duration("connection_duration", r.clock.Now().Sub(conn.attachedAt)))
}

func (r *Registry) runKeepAlive(conn *connection, ticker clock.Ticker) {
	defer r.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-conn.stop:
			return
		case <-ticker.C():
			select {
			case <-conn.stop:
				return
			default:
			}
			if err := conn.channel.Send(r.ping); err != nil {
				r.logger.Warn("keep-alive failed",
					slog.String("player_id", string(conn.id)),
					slog.String("error", err.Error()))
				if r.onDead != nil {
					r.onDead(conn.id, conn.channel)
				}
				return
			}
		}
	}
}
