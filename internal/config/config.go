// Package config binds the server's flags and DRAWIT_* environment
// variables into a validated Config.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mcoot/drawit/internal/api"
	"github.com/mcoot/drawit/internal/factory"
	"github.com/mcoot/drawit/internal/fanout"
	"github.com/mcoot/drawit/internal/session"
	"github.com/mcoot/drawit/internal/storage"
	redisstorage "github.com/mcoot/drawit/internal/storage/redis"
)

// EnvPrefix is prepended to every environment variable
const EnvPrefix = "DRAWIT"

// Config holds every server setting
type Config struct {
	Host            string
	Port            int
	MaxPlayers      int
	KeepAlive       time.Duration
	Storage         string
	RedisURL        string
	HistoryLimit    int
	PublicURL       string
	LogLevel        string
	LogFormat       string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.MaxPlayers < 2 {
		return fmt.Errorf("invalid max players (must be at least 2): %d", c.MaxPlayers)
	}
	if c.KeepAlive <= 0 {
		return fmt.Errorf("invalid keepalive (must be positive): %s", c.KeepAlive)
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("invalid history limit (must be at least 1): %d", c.HistoryLimit)
	}
	switch c.Storage {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		if c.RedisURL == "" {
			return errors.New("--redis-url is required when --storage=redis")
		}
	default:
		return fmt.Errorf("invalid storage %q (must be memory or redis)", c.Storage)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("invalid log format %q (must be json or text)", c.LogFormat)
	}
	return nil
}

// Factory returns the application wiring settings
func (c *Config) Factory(logger *slog.Logger) factory.Config {
	cfg := factory.Config{
		Session: session.Config{
			MaxPlayers: c.MaxPlayers,
			KeepAlive:  c.KeepAlive,
		},
		Logger:       logger,
		StorageType:  c.Storage,
		HistoryLimit: c.HistoryLimit,
	}
	if c.Storage == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		redisCfg.Capacity = c.HistoryLimit
		cfg.RedisConfig = &redisCfg
	}
	return cfg
}

// Server returns the HTTP server settings
func (c *Config) Server() api.ServerConfig {
	return api.ServerConfig{
		Host:            c.Host,
		Port:            c.Port,
		ReadTimeout:     c.ReadTimeout,
		ShutdownTimeout: c.ShutdownTimeout,
	}
}

// NewLogger builds the process logger from the log settings
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return slog.New(slog.NewJSONHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// NewCommand builds the server command. Flags fall back to DRAWIT_*
// environment variables; run is called with the validated Config.
func NewCommand(cfg *Config, run func(ctx context.Context, cfg *Config) error) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "drawit-server",
		Short: "Real-time drawing and guessing party game server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&cfg.Host, "host", "", "address to bind to (env: DRAWIT_HOST)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: DRAWIT_PORT)")
	fs.IntVar(&cfg.MaxPlayers, "max-players", session.DefaultMaxPlayers, "lobby capacity (env: DRAWIT_MAX_PLAYERS)")
	fs.DurationVar(&cfg.KeepAlive, "keepalive", fanout.DefaultKeepAlive, "interval between stream pings (env: DRAWIT_KEEPALIVE)")
	fs.StringVar(&cfg.Storage, "storage", factory.StorageTypeMemory, "round history backend: memory or redis (env: DRAWIT_STORAGE)")
	fs.StringVar(&cfg.RedisURL, "redis-url", "", "redis connection URL (env: DRAWIT_REDIS_URL)")
	fs.IntVar(&cfg.HistoryLimit, "history-limit", storage.DefaultCapacity, "number of finished rounds kept (env: DRAWIT_HISTORY_LIMIT)")
	fs.StringVar(&cfg.PublicURL, "public-url", "", "join link encoded in the QR code; derived from requests if empty (env: DRAWIT_PUBLIC_URL)")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "debug, info, warn or error (env: DRAWIT_LOG_LEVEL)")
	fs.StringVar(&cfg.LogFormat, "log-format", "json", "json or text (env: DRAWIT_LOG_FORMAT)")
	fs.DurationVar(&cfg.ReadTimeout, "read-timeout", 15*time.Second, "time allowed to read request headers (env: DRAWIT_READ_TIMEOUT)")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", 30*time.Second, "time allowed for graceful shutdown (env: DRAWIT_SHUTDOWN_TIMEOUT)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
