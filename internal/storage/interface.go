package storage

import (
	"context"

	"github.com/mcoot/drawit/internal/model"
)

// DefaultCapacity is the number of finished rounds kept by default
const DefaultCapacity = 50

// Storage archives finished rounds. Live game state is never stored.
type Storage interface {
	// SaveRound appends a finished round, evicting the oldest beyond capacity
	SaveRound(ctx context.Context, summary *model.RoundSummary) error

	// ListRounds returns up to limit rounds, newest first. A non-positive
	// limit returns everything retained.
	ListRounds(ctx context.Context, limit int) ([]*model.RoundSummary, error)

	// Close releases any underlying connection
	Close() error
}
