package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/drawit/internal/dependencies/ident"
	"github.com/mcoot/drawit/internal/model"
)

// MockIdentGenerator issues predictable identities: queued values first,
// then "player-1", "player-2", ...
type MockIdentGenerator struct {
	mu     sync.Mutex
	queued []model.PlayerID
	next   int
}

// Ensure MockIdentGenerator implements Generator
var _ ident.Generator = (*MockIdentGenerator)(nil)

// NewMockIdentGenerator creates a new MockIdentGenerator
func NewMockIdentGenerator() *MockIdentGenerator {
	return &MockIdentGenerator{}
}

// NewPlayerID returns the next identity
func (g *MockIdentGenerator) NewPlayerID() model.PlayerID {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queued) > 0 {
		id := g.queued[0]
		g.queued = g.queued[1:]
		return id
	}
	g.next++
	return model.PlayerID(fmt.Sprintf("player-%d", g.next))
}

// Queue adds identities to hand out before the sequential ones
func (g *MockIdentGenerator) Queue(ids ...model.PlayerID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queued = append(g.queued, ids...)
}
