package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoPlayer is returned by commands that need a joined player
var ErrNoPlayer = errors.New("no player: run 'drawit join' first or pass --player")

// Config holds CLI configuration
type Config struct {
	ServerURL  string
	PlayerID   string
	PlayerFile string
	Output     string
	Verbose    bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:  getEnvOrDefault("DRAWIT_SERVER", "http://localhost:8080"),
		PlayerID:   os.Getenv("DRAWIT_PLAYER"),
		PlayerFile: getEnvOrDefault("DRAWIT_PLAYER_FILE", defaultPlayerFile()),
		Output:     "text",
		Verbose:    false,
	}
}

// LoadPlayer loads the player ID from file if not already set
func (c *Config) LoadPlayer() error {
	if c.PlayerID != "" {
		return nil
	}

	data, err := os.ReadFile(c.PlayerFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Not joined yet
		}
		return err
	}

	c.PlayerID = strings.TrimSpace(string(data))
	return nil
}

// SavePlayer saves the player ID to the player file
func (c *Config) SavePlayer(id string) error {
	c.PlayerID = id

	dir := filepath.Dir(c.PlayerFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.PlayerFile, []byte(id), 0600)
}

// ClearPlayer forgets the saved player
func (c *Config) ClearPlayer() error {
	c.PlayerID = ""
	if err := os.Remove(c.PlayerFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RequirePlayer returns the current player ID or ErrNoPlayer
func (c *Config) RequirePlayer() (string, error) {
	if c.PlayerID == "" {
		return "", ErrNoPlayer
	}
	return c.PlayerID, nil
}

func defaultPlayerFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".drawit/player"
	}
	return filepath.Join(home, ".drawit", "player")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
