package redis

import "time"

// Config holds Redis connection and retention settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// Capacity is the number of rounds kept in the history list
	Capacity int

	// HistoryTTL expires the history list after inactivity (0 = never)
	HistoryTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		Capacity:     50,
		HistoryTTL:   7 * 24 * time.Hour,
	}
}
