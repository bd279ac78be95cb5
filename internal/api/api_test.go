package api_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/drawit/internal/api"
	"github.com/mcoot/drawit/internal/api/apierr"
	"github.com/mcoot/drawit/internal/api/response"
	"github.com/mcoot/drawit/internal/factory"
	"github.com/mcoot/drawit/internal/model"
	"github.com/mcoot/drawit/internal/session"
	"github.com/mcoot/drawit/internal/testutil"
	"github.com/mcoot/drawit/internal/transport/ws"
)

// testServer wires the router to a test app with mocked dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithConfig(t, session.Config{
		MaxPlayers: session.DefaultMaxPlayers,
		KeepAlive:  25 * time.Second,
		Words:      factory.TestWords,
	})
}

func newTestServerWithConfig(t *testing.T, cfg session.Config) *testServer {
	t.Helper()

	app := factory.NewTestAppWithConfig(cfg)
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:    testutil.NopLogger(),
		Session:   app.Session,
		PublicURL: "https://draw.example.com/",
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) join(t *testing.T, name string) response.JoinResponse {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/join", map[string]string{"name": name})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.JoinResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func (ts *testServer) action(playerID model.PlayerID, kind string, payload any) *httptest.ResponseRecorder {
	body := map[string]any{"playerId": playerID, "type": kind}
	if payload != nil {
		body["payload"] = payload
	}
	return ts.request(http.MethodPost, "/api/v1/action", body)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.ErrorResponse {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	return resp
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestJoin(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.join(t, "  Alice  ")

	assert.Equal(t, model.PlayerID("player-1"), resp.Player.ID)
	assert.Equal(t, "Alice", resp.Player.Name)
	assert.Equal(t, 0, resp.Player.Score)
	assert.False(t, resp.Round.Active)
	assert.Equal(t, session.DefaultMaxPlayers, resp.MaxPlayers)
}

func TestJoinWithoutNameGetsGuestName(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.join(t, "")
	assert.True(t, strings.HasPrefix(resp.Player.Name, "Guest-"))
}

func TestJoinInvalidBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/join", strings.NewReader(`{"name":`))
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid request.", decodeError(t, rr).Message)
}

func TestJoinOversizedBody(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/join", map[string]string{"name": strings.Repeat("x", 2<<20)})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, ts.app.Session.Snapshot().Players)
}

func TestJoinLobbyFull(t *testing.T) {
	ts := newTestServerWithConfig(t, session.Config{MaxPlayers: 2, KeepAlive: 25 * time.Second, Words: factory.TestWords})
	ts.join(t, "Alice")
	ts.join(t, "Bob")

	rr := ts.request(http.MethodPost, "/api/v1/join", map[string]string{"name": "Carol"})

	assert.Equal(t, http.StatusForbidden, rr.Code)
	resp := decodeError(t, rr)
	assert.Equal(t, apierr.CodeLobbyFull, resp.Code)
	assert.Equal(t, "Lobby full. Max 2 players.", resp.Message)
}

func TestJoinResponseNeverContainsWord(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.join(t, "Alice")
	ts.join(t, "Bob")
	require.Equal(t, http.StatusOK, ts.action(alice.Player.ID, "startRound", nil).Code)

	rr := ts.request(http.MethodPost, "/api/v1/join", map[string]string{"name": "Carol"})
	require.Equal(t, http.StatusOK, rr.Code)

	assert.NotContains(t, rr.Body.String(), factory.TestWords[0])
	var resp response.JoinResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Round.Active)
	assert.Equal(t, alice.Player.ID, resp.Round.DrawerID)
}

func TestLeave(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.join(t, "Alice")

	rr := ts.request(http.MethodPost, "/api/v1/leave", map[string]any{"playerId": alice.Player.ID})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true,"removed":true}`, rr.Body.String())

	// Leaving again is harmless
	rr = ts.request(http.MethodPost, "/api/v1/leave", map[string]any{"playerId": alice.Player.ID})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true,"removed":false}`, rr.Body.String())

	rr = ts.request(http.MethodPost, "/api/v1/leave", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestActionUnknownPlayer(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.action("nobody", "guess", map[string]string{"text": "apple"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Unknown player.", decodeError(t, rr).Message)

	// Identity is checked before the action kind
	rr = ts.action("nobody", "dance", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestActionUnknownKind(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.join(t, "Alice")

	rr := ts.action(alice.Player.ID, "dance", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "Unknown action.", decodeError(t, rr).Message)
}

func TestStartRoundNeedsTwoPlayers(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.join(t, "Alice")

	rr := ts.action(alice.Player.ID, "startRound", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "Need at least 2 players to start.", decodeError(t, rr).Message)
}

func TestFullRoundFlow(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.join(t, "Alice")
	bob := ts.join(t, "Bob")

	rr := ts.action(alice.Player.ID, "startRound", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())

	rr = ts.action(alice.Player.ID, "startRound", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "A round is already in progress.", decodeError(t, rr).Message)

	rr = ts.action(alice.Player.ID, "guess", map[string]string{"text": "apple"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "Drawer cannot guess.", decodeError(t, rr).Message)

	rr = ts.action(bob.Player.ID, "guess", map[string]string{"text": "   "})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "Empty guess ignored.", decodeError(t, rr).Message)

	rr = ts.action(bob.Player.ID, "guess", map[string]string{"text": "banana"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true,"correct":false}`, rr.Body.String())

	rr = ts.action(bob.Player.ID, "guess", map[string]string{"text": "Apple"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true,"correct":true}`, rr.Body.String())

	// The round ended with Bob's guess
	rr = ts.action(bob.Player.ID, "guess", map[string]string{"text": "apple"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "No active round.", decodeError(t, rr).Message)

	rr = ts.request(http.MethodGet, "/api/v1/state", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var state response.State
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	require.Len(t, state.Leaderboard, 2)
	assert.Equal(t, "Bob", state.Leaderboard[0].Name)
	assert.Equal(t, 100, state.Leaderboard[0].Score)
	assert.Equal(t, 15, state.Leaderboard[1].Score)
	assert.False(t, state.Round.Active)
	assert.Equal(t, 1, state.Round.RoundNumber)

	rr = ts.request(http.MethodGet, "/api/v1/history?limit=5", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var history response.History
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &history))
	require.Len(t, history.Rounds, 1)
	assert.Equal(t, "apple", history.Rounds[0].Word)
	assert.Equal(t, model.ReasonEveryoneGuessed, history.Rounds[0].Reason)
}

func TestDrawAndClearRequireDrawer(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.join(t, "Alice")
	bob := ts.join(t, "Bob")
	require.Equal(t, http.StatusOK, ts.action(alice.Player.ID, "startRound", nil).Code)

	stroke := map[string]any{"from": map[string]float64{"x": 1, "y": 1}, "to": map[string]float64{"x": 2, "y": 2}}

	rr := ts.action(bob.Player.ID, "draw", stroke)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeNotDrawer, decodeError(t, rr).Code)

	rr = ts.action(bob.Player.ID, "clear", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	assert.Equal(t, http.StatusOK, ts.action(alice.Player.ID, "draw", stroke).Code)
	assert.Equal(t, http.StatusOK, ts.action(alice.Player.ID, "clear", nil).Code)

	rr = ts.action(alice.Player.ID, "draw", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEndRound(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.join(t, "Alice")
	ts.join(t, "Bob")

	// Ending an idle round is a no-op
	assert.Equal(t, http.StatusOK, ts.action(alice.Player.ID, "endRound", nil).Code)

	require.Equal(t, http.StatusOK, ts.action(alice.Player.ID, "startRound", nil).Code)
	assert.Equal(t, http.StatusOK, ts.action(alice.Player.ID, "endRound", nil).Code)
	assert.False(t, ts.app.Session.Snapshot().Round.Active)
}

func TestHistoryInvalidLimit(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/history?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/history", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"rounds":[]}`, rr.Body.String())
}

func TestQRCode(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/qr", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")))
}

func TestStreamUnknownPlayer(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/stream?playerId=nobody", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/ws?playerId=nobody", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// sseEvent is one parsed event from a live stream
type sseEvent struct {
	name string
	data string
}

func readEvents(t *testing.T, r *bufio.Reader, n int) []sseEvent {
	t.Helper()
	var events []sseEvent
	var current sseEvent
	for len(events) < n {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data += strings.TrimPrefix(line, "data: ")
		case line == "" && current.name != "":
			events = append(events, current)
			current = sseEvent{}
		}
	}
	return events
}

func TestEventStream(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.handler)
	t.Cleanup(srv.Close)

	alice := ts.join(t, "Alice")

	resp, err := http.Get(srv.URL + "/api/v1/stream?playerId=" + string(alice.Player.ID))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	first, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "retry: 3000\n", first)

	events := readEvents(t, reader, 1)
	assert.Equal(t, "welcome", events[0].name)

	ts.join(t, "Bob")
	events = readEvents(t, reader, 2)
	assert.Equal(t, "players", events[0].name)
	assert.Equal(t, "chat", events[1].name)
	assert.JSONEq(t, `{"message":"Bob joined the lobby.","type":"system"}`, events[1].data)
}

func TestEventStreamCloseRemovesPlayer(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.handler)
	t.Cleanup(srv.Close)

	alice := ts.join(t, "Alice")

	resp, err := http.Get(srv.URL + "/api/v1/stream?playerId=" + string(alice.Player.ID))
	require.NoError(t, err)
	readEvents(t, bufio.NewReader(resp.Body), 1)
	require.NoError(t, resp.Body.Close())

	assert.Eventually(t, func() bool {
		return !ts.app.Session.HasPlayer(alice.Player.ID)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketStream(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.handler)
	t.Cleanup(srv.Close)

	alice := ts.join(t, "Alice")
	bob := ts.join(t, "Bob")

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws?playerId=" + string(alice.Player.ID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	var env ws.Envelope
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, model.EventWelcome, env.Event)

	// Alice joined first, so she draws and alone receives the word
	require.Equal(t, http.StatusOK, ts.action(bob.Player.ID, "startRound", nil).Code)

	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, model.EventRoundStarted, env.Event)
	assert.JSONEq(t, `{"drawerId":"player-1","drawerName":"Alice","roundNumber":1}`, string(env.Data))

	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, model.EventWord, env.Event)
	assert.JSONEq(t, `{"word":"apple"}`, string(env.Data))
}
