package memory

import (
	"context"
	"sync"

	"github.com/mcoot/drawit/internal/model"
	"github.com/mcoot/drawit/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu       sync.RWMutex
	rounds   []*model.RoundSummary // oldest first
	capacity int
}

// New creates a new in-memory storage keeping at most capacity rounds
func New(capacity int) *Storage {
	if capacity <= 0 {
		capacity = storage.DefaultCapacity
	}
	return &Storage{capacity: capacity}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveRound(ctx context.Context, summary *model.RoundSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *summary
	stored.Guessers = append([]model.GuessAward(nil), summary.Guessers...)
	s.rounds = append(s.rounds, &stored)
	if over := len(s.rounds) - s.capacity; over > 0 {
		s.rounds = append([]*model.RoundSummary(nil), s.rounds[over:]...)
	}
	return nil
}

func (s *Storage) ListRounds(ctx context.Context, limit int) ([]*model.RoundSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.rounds) {
		limit = len(s.rounds)
	}
	out := make([]*model.RoundSummary, 0, limit)
	for i := len(s.rounds) - 1; i >= 0 && len(out) < limit; i-- {
		copied := *s.rounds[i]
		out = append(out, &copied)
	}
	return out, nil
}

func (s *Storage) Close() error {
	return nil
}
