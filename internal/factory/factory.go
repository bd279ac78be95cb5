package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/drawit/internal/dependencies/clock"
	"github.com/mcoot/drawit/internal/dependencies/ident"
	"github.com/mcoot/drawit/internal/dependencies/random"
	"github.com/mcoot/drawit/internal/session"
	"github.com/mcoot/drawit/internal/storage"
	"github.com/mcoot/drawit/internal/storage/memory"
	redisstorage "github.com/mcoot/drawit/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Round history archive
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	IDs    ident.Generator

	// The lobby
	Session *session.Session
}

// Config holds configuration for the application factory
type Config struct {
	// Session holds lobby settings (optional)
	// If zero value, defaults to session.DefaultConfig()
	Session session.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the history backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// HistoryLimit is the number of rounds kept by the memory backend
	HistoryLimit int
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New(cfg.HistoryLimit)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Use default session config if not provided
	sessionCfg := cfg.Session
	if sessionCfg.MaxPlayers == 0 && sessionCfg.KeepAlive == 0 {
		sessionCfg = session.DefaultConfig()
	}

	return newWithDependencies(store, clock.New(), random.New(), ident.New(), sessionCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	ids ident.Generator,
	sessionCfg session.Config,
	logger *slog.Logger,
) *App {
	return &App{
		Storage: store,
		Clock:   clk,
		Random:  rnd,
		IDs:     ids,
		Session: session.New(sessionCfg, store, clk, rnd, ids, logger),
	}
}

// Close stops every push channel and releases the archive
func (a *App) Close() error {
	a.Session.Close()
	return a.Storage.Close()
}
