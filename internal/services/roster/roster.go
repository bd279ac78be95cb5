// Package roster tracks the players in the lobby and the turn order.
//
// Players live in an append-only arena of slots in join order. Removal tags a
// slot instead of shifting the rest, so the turn cursor (a slot position) can
// never point outside the arena or at a different player than the one who
// last drew. Tagged slots are compacted away once they dominate the arena.
package roster

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/mcoot/drawit/internal/dependencies/clock"
	"github.com/mcoot/drawit/internal/dependencies/ident"
	"github.com/mcoot/drawit/internal/dependencies/random"
	"github.com/mcoot/drawit/internal/model"
)

const (
	// GuestPrefix is prepended to generated names for blank joins
	GuestPrefix = "Guest-"

	guestMin = 100
	guestMax = 999

	// compactThreshold is the number of removed slots tolerated before compaction
	compactThreshold = 32
)

type slot struct {
	player  model.Player
	removed bool
}

// Roster is the authoritative set of players. It is not safe for concurrent
// use; the owning session serializes access.
type Roster struct {
	slots  []slot
	index  map[model.PlayerID]int
	active int
	cursor int // slot of the most recent drawer, -1 before the first round

	ids    ident.Generator
	random random.Random
	clock  clock.Clock
}

// New creates an empty Roster
func New(ids ident.Generator, random random.Random, clock clock.Clock) *Roster {
	return &Roster{
		index:  make(map[model.PlayerID]int),
		cursor: -1,
		ids:    ids,
		random: random,
		clock:  clock,
	}
}

// Join adds a player with a sanitized name and a fresh identity.
// Capacity is enforced by the caller.
func (r *Roster) Join(rawName string) model.Player {
	name := SanitizeName(rawName)
	if name == "" {
		name = fmt.Sprintf("%s%d", GuestPrefix, random.Between(r.random, guestMin, guestMax))
	}

	player := model.Player{
		ID:       r.newID(),
		Name:     name,
		JoinedAt: r.clock.Now(),
	}
	r.index[player.ID] = len(r.slots)
	r.slots = append(r.slots, slot{player: player})
	r.active++
	return player
}

// Remove drops the player. The second result is false if they were already absent.
func (r *Roster) Remove(id model.PlayerID) (model.Player, bool) {
	i, ok := r.index[id]
	if !ok {
		return model.Player{}, false
	}
	r.slots[i].removed = true
	delete(r.index, id)
	r.active--
	player := r.slots[i].player

	r.maybeCompact()
	return player, true
}

// Award adds points to a player's score. Non-positive deltas and unknown
// players are ignored so scores never decrease.
func (r *Roster) Award(id model.PlayerID, delta int) {
	if delta <= 0 {
		return
	}
	if i, ok := r.index[id]; ok {
		r.slots[i].player.Score += delta
	}
}

// Get returns the player with the given identity
func (r *Roster) Get(id model.PlayerID) (model.Player, bool) {
	i, ok := r.index[id]
	if !ok {
		return model.Player{}, false
	}
	return r.slots[i].player, true
}

// Has reports whether the identity is registered
func (r *Roster) Has(id model.PlayerID) bool {
	_, ok := r.index[id]
	return ok
}

// Len returns the number of registered players
func (r *Roster) Len() int {
	return r.active
}

// Snapshot returns the registered players in join order
func (r *Roster) Snapshot() []model.Player {
	players := make([]model.Player, 0, r.active)
	for _, s := range r.slots {
		if !s.removed {
			players = append(players, s.player)
		}
	}
	return players
}

// NextDrawer advances the turn cursor to the first registered player after
// the previous drawer in join order, wrapping around.
func (r *Roster) NextDrawer() (model.Player, bool) {
	n := len(r.slots)
	if r.active == 0 {
		return model.Player{}, false
	}
	for step := 1; step <= n; step++ {
		i := (r.cursor + step) % n
		if i < 0 {
			i += n
		}
		if !r.slots[i].removed {
			r.cursor = i
			return r.slots[i].player, true
		}
	}
	return model.Player{}, false
}

// PeekNextDrawer returns who NextDrawer would pick without moving the cursor
func (r *Roster) PeekNextDrawer() (model.Player, bool) {
	cursor := r.cursor
	player, ok := r.NextDrawer()
	r.cursor = cursor
	return player, ok
}

func (r *Roster) newID() model.PlayerID {
	for {
		id := r.ids.NewPlayerID()
		if _, taken := r.index[id]; !taken && id != "" {
			return id
		}
	}
}

// maybeCompact drops removed slots once they outnumber registered ones.
// The cursor moves to the last surviving slot at or before it, which keeps
// the next pick unchanged.
func (r *Roster) maybeCompact() {
	removed := len(r.slots) - r.active
	if removed < compactThreshold || removed <= r.active {
		return
	}

	slots := make([]slot, 0, r.active)
	cursor := -1
	for i, s := range r.slots {
		if s.removed {
			continue
		}
		if i <= r.cursor {
			cursor = len(slots)
		}
		r.index[s.player.ID] = len(slots)
		slots = append(slots, s)
	}
	r.slots = slots
	r.cursor = cursor
}

// SanitizeName strips non-printable characters, trims surrounding space and
// truncates to MaxNameLength characters. The result may be empty.
func SanitizeName(raw string) string {
	cleaned := strings.Map(func(c rune) rune {
		if unicode.IsPrint(c) {
			return c
		}
		return -1
	}, raw)
	cleaned = strings.TrimSpace(cleaned)

	runes := []rune(cleaned)
	if len(runes) > model.MaxNameLength {
		cleaned = strings.TrimSpace(string(runes[:model.MaxNameLength]))
	}
	return cleaned
}
