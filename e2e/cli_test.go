package e2e_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/drawit/internal/api"
	"github.com/mcoot/drawit/internal/factory"
	"github.com/mcoot/drawit/internal/model"
	"github.com/mcoot/drawit/internal/session"
	"github.com/mcoot/drawit/internal/testutil"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	dir        string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "drawit-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/drawit")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		dir:        t.TempDir(),
	}
}

// command builds a CLI invocation for the player whose ID is kept in the named file
func (r *cliRunner) command(ctx context.Context, player string, args ...string) *exec.Cmd {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--player-file", filepath.Join(r.dir, player),
		"--output", "json",
	}, args...)

	cmd := exec.CommandContext(ctx, r.binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "DRAWIT_PLAYER=")
	return cmd
}

func (r *cliRunner) run(player string, args ...string) (string, error) {
	output, err := r.command(context.Background(), player, args...).CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer runs the real server stack on a free port
type testServer struct {
	addr     string
	app      *factory.App
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	// A single word makes every round's answer known
	app, err := factory.New(factory.Config{
		Session: session.Config{
			MaxPlayers: session.DefaultMaxPlayers,
			KeepAlive:  time.Second,
			Words:      []string{"lighthouse"},
		},
	})
	require.NoError(t, err)

	logger := testutil.NopLogger()
	router := api.NewRouter(api.RouterConfig{Logger: logger, Session: app.Session})

	serverCfg := api.DefaultServerConfig()
	serverCfg.Host = "127.0.0.1"
	serverCfg.Port = port
	server := api.NewServer(router, serverCfg, logger)

	go func() {
		if err := server.Start(); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://127.0.0.1:" + strconv.Itoa(port)
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		app:  app,
		shutdown: func() {
			app.Session.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Storage.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type joinResponse struct {
	Player struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Score int    `json:"score"`
	} `json:"player"`
	MaxPlayers int `json:"maxPlayers"`
}

type actionResponse struct {
	OK      bool  `json:"ok"`
	Correct *bool `json:"correct"`
}

type stateResponse struct {
	Leaderboard []struct {
		Name  string `json:"name"`
		Score int    `json:"score"`
	} `json:"leaderboard"`
	Round struct {
		Active      bool `json:"active"`
		RoundNumber int  `json:"roundNumber"`
	} `json:"round"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type streamEvent struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("alice", "health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_FullRound(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Join two players
	output, err := cli.run("alice", "join", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)
	var alice joinResponse
	require.NoError(t, json.Unmarshal([]byte(output), &alice))
	assert.Equal(t, "Alice", alice.Player.Name)
	assert.Equal(t, 10, alice.MaxPlayers)

	output, err = cli.run("bob", "join", "--name", "Bob")
	require.NoError(t, err, "output: %s", output)

	// Alice listens to her stream
	ctx, cancel := context.WithCancel(context.Background())
	events := cli.command(ctx, "alice", "events", "--json")
	stdout, err := events.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, events.Start())
	defer func() {
		cancel()
		_ = events.Wait()
	}()

	lines := bufio.NewScanner(stdout)
	next := func() streamEvent {
		require.True(t, lines.Scan(), "event stream ended")
		var evt streamEvent
		require.NoError(t, json.Unmarshal(lines.Bytes(), &evt))
		return evt
	}
	assert.Equal(t, "welcome", next().Event)

	// Alice joined first, so she draws
	output, err = cli.run("bob", "start")
	require.NoError(t, err, "output: %s", output)

	assert.Equal(t, "roundStarted", next().Event)
	word := next()
	assert.Equal(t, "word", word.Event)
	assert.JSONEq(t, `{"word":"lighthouse"}`, word.Data)

	// The drawer cannot guess
	output, err = cli.run("alice", "guess", "lighthouse")
	require.Error(t, err)
	assert.Contains(t, output, "Drawer cannot guess.")

	// Bob guesses right and the round ends
	output, err = cli.run("bob", "guess", "LightHouse")
	require.NoError(t, err, "output: %s", output)
	var guess actionResponse
	require.NoError(t, json.Unmarshal([]byte(output), &guess))
	require.NotNil(t, guess.Correct)
	assert.True(t, *guess.Correct)

	output, err = cli.run("bob", "state")
	require.NoError(t, err, "output: %s", output)
	var state stateResponse
	require.NoError(t, json.Unmarshal([]byte(output), &state))
	assert.False(t, state.Round.Active)
	assert.Equal(t, 1, state.Round.RoundNumber)
	require.Len(t, state.Leaderboard, 2)
	assert.Equal(t, "Bob", state.Leaderboard[0].Name)
	assert.Equal(t, 100, state.Leaderboard[0].Score)
	assert.Equal(t, 15, state.Leaderboard[1].Score)
}

func TestCLI_ClosingStreamLeavesLobby(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("alice", "join", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)
	var alice joinResponse
	require.NoError(t, json.Unmarshal([]byte(output), &alice))

	ctx, cancel := context.WithCancel(context.Background())
	events := cli.command(ctx, "alice", "events", "--json")
	stdout, err := events.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, events.Start())

	lines := bufio.NewScanner(stdout)
	require.True(t, lines.Scan())

	cancel()
	_ = events.Wait()

	assert.Eventually(t, func() bool {
		return !ts.app.Session.HasPlayer(model.PlayerID(alice.Player.ID))
	}, 5*time.Second, 50*time.Millisecond)
}
