package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
	"github.com/rocketscienceinc/tictactoe-match/internal/i18n"
	"github.com/rocketscienceinc/tictactoe-match/internal/match"
)

const readTimeout = 2 * time.Second

type fakeSessions struct {
	clock *clock.Mock

	mu     sync.Mutex
	states map[string]*entity.MatchState
	saves  int
	closed []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{clock: clock.NewMock(), states: map[string]*entity.MatchState{}}
}

func (that *fakeSessions) Open(_ context.Context, sessionID string, listeners ...match.Listener) (*match.Engine, error) {
	that.mu.Lock()
	state := that.states[sessionID]
	that.mu.Unlock()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return match.NewEngine(logger, match.Options{Clock: that.clock, State: state}, listeners...), nil
}

func (that *fakeSessions) Save(_ context.Context, sessionID string, engine *match.Engine) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.states[sessionID] = engine.State()
	that.saves++

	return nil
}

func (that *fakeSessions) Close(ctx context.Context, sessionID string, engine *match.Engine) error {
	engine.Close()

	if err := that.Save(ctx, sessionID, engine); err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.closed = append(that.closed, sessionID)

	return nil
}

func (that *fakeSessions) store(sessionID string, state *entity.MatchState) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.states[sessionID] = state
}

func (that *fakeSessions) stored(sessionID string) *entity.MatchState {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.states[sessionID]
}

func (that *fakeSessions) closedSessions() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]string(nil), that.closed...)
}

type fakeMetrics struct {
	mu     sync.Mutex
	active int
}

func (that *fakeMetrics) SessionOpened() {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.active++
}

func (that *fakeMetrics) SessionClosed() {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.active--
}

func (that *fakeMetrics) Active() int {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.active
}

type testServer struct {
	url      string
	sessions *fakeSessions
	metrics  *fakeMetrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	presenter := i18n.NewPresenter(i18n.Load(logger, "", "pt"))
	sessions := newFakeSessions()
	metrics := &fakeMetrics{}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server := New(logger, sessions, presenter, metrics)
	httpServer := httptest.NewServer(server.Handler(ctx))
	t.Cleanup(httpServer.Close)

	return &testServer{
		url:      "ws" + strings.TrimPrefix(httpServer.URL, "http"),
		sessions: sessions,
		metrics:  metrics,
	}
}

func dial(t *testing.T, url string, header http.Header) (*websocket.Conn, *http.Response) {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn, resp
}

func send(t *testing.T, conn *websocket.Conn, action string, payload any) {
	t.Helper()

	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		require.NoError(t, err)
	}

	require.NoError(t, conn.WriteJSON(Message{Action: action, Payload: raw}))
}

func receive(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readTimeout)))

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))

	return msg
}

func receiveState(t *testing.T, conn *websocket.Conn, action string) StatePayload {
	t.Helper()

	msg := receive(t, conn)
	require.Equal(t, action, msg.Action)

	var payload StatePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))

	return payload
}

func receiveEvent(t *testing.T, conn *websocket.Conn, kind entity.EventKind) EventPayload {
	t.Helper()

	msg := receive(t, conn)
	require.Equal(t, string(kind), msg.Action)

	var payload EventPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))

	return payload
}

func receiveError(t *testing.T, conn *websocket.Conn) string {
	t.Helper()

	msg := receive(t, conn)
	require.Equal(t, actionError, msg.Action)

	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))

	return payload.Error
}

func TestServer_Connect(t *testing.T) {
	t.Run("New session gets a cookie and the initial state", func(t *testing.T) {
		// Given: a running server
		ts := newTestServer(t)

		// When: connecting without a cookie
		conn, resp := dial(t, ts.url, nil)

		// Then: a session cookie is set and the state is sent
		var cookie *http.Cookie
		for _, c := range resp.Cookies() {
			if c.Name == sessionCookie {
				cookie = c
			}
		}
		require.NotNil(t, cookie)

		payload := receiveState(t, conn, actionConnect)
		assert.Equal(t, cookie.Value, payload.Session)
		assert.Equal(t, "pt", payload.Language)
		assert.Equal(t, "pt-BR", payload.LangTag)
		assert.Equal(t, "Vez do jogador Jogador X", payload.Status)
		assert.Equal(t, entity.NewMatchState(entity.ModeSingle), payload.State)
	})

	t.Run("Existing cookie keeps the session", func(t *testing.T) {
		// Given: a running server
		ts := newTestServer(t)

		// When: connecting with a session cookie
		conn, resp := dial(t, ts.url, http.Header{"Cookie": {sessionCookie + "=abc"}})

		// Then: no new cookie is issued and the session is reused
		assert.Empty(t, resp.Cookies())
		assert.Equal(t, "abc", receiveState(t, conn, actionConnect).Session)
	})

	t.Run("Language comes from the query, then Accept-Language", func(t *testing.T) {
		// Given: a running server
		ts := newTestServer(t)

		// When: connecting with each hint
		byQuery, _ := dial(t, ts.url+"?lang=es", http.Header{"Accept-Language": {"en-US"}})
		byHeader, _ := dial(t, ts.url, http.Header{"Accept-Language": {"en-GB,en;q=0.9"}})

		// Then: the query wins over the header
		assert.Equal(t, "es", receiveState(t, byQuery, actionConnect).Language)
		assert.Equal(t, "en", receiveState(t, byHeader, actionConnect).Language)
	})
}

func TestServer_Commands(t *testing.T) {
	t.Run("Playing a cell streams the engine events", func(t *testing.T) {
		// Given: a connected client
		ts := newTestServer(t)
		conn, _ := dial(t, ts.url, nil)
		receiveState(t, conn, actionConnect)

		// When: X plays the centre
		send(t, conn, actionCellPlay, RequestPayload{Cell: intPtr(4)})

		// Then: the cell and turn updates arrive in order
		cell := receiveEvent(t, conn, entity.EventCellUpdated)
		require.NotNil(t, cell.Event.Cell)
		assert.Equal(t, entity.CellChange{Index: 4, Mark: entity.X}, *cell.Event.Cell)
		assert.Nil(t, cell.Status)

		turn := receiveEvent(t, conn, entity.EventTurnChanged)
		require.NotNil(t, turn.Status)
		assert.Equal(t, "Vez do jogador Jogador O", *turn.Status)
	})

	t.Run("A winning move reports the outcome and starts the countdown", func(t *testing.T) {
		// Given: a connected client
		ts := newTestServer(t)
		conn, _ := dial(t, ts.url+"?lang=en", nil)
		receiveState(t, conn, actionConnect)

		// When: X completes the first column
		for _, cell := range []int{0, 1, 3, 2} {
			send(t, conn, actionCellPlay, RequestPayload{Cell: intPtr(cell)})
			receiveEvent(t, conn, entity.EventCellUpdated)
			receiveEvent(t, conn, entity.EventTurnChanged)
		}
		send(t, conn, actionCellPlay, RequestPayload{Cell: intPtr(6)})

		// Then: the round end, score and first tick follow the move
		receiveEvent(t, conn, entity.EventCellUpdated)

		ended := receiveEvent(t, conn, entity.EventRoundEnded)
		require.NotNil(t, ended.Status)
		assert.Equal(t, "Winner: Player X won the game!", *ended.Status)
		assert.Equal(t, entity.Triple{0, 3, 6}, ended.Event.Outcome.Triple)

		score := receiveEvent(t, conn, entity.EventScoreChanged)
		assert.Equal(t, entity.Score{X: 1}, *score.Event.Score)

		tick := receiveEvent(t, conn, entity.EventCountdownTick)
		require.NotNil(t, tick.Status)
		assert.Equal(t, "Starting new game in 5 seconds", *tick.Status)
	})

	t.Run("Setting the mode resets the series", func(t *testing.T) {
		// Given: a connected client
		ts := newTestServer(t)
		conn, _ := dial(t, ts.url, nil)
		receiveState(t, conn, actionConnect)

		// When: best-of-3 is selected
		send(t, conn, actionModeSet, RequestPayload{Mode: string(entity.ModeBestOf3)})

		// Then: the mode change is followed by a clean series
		mode := receiveEvent(t, conn, entity.EventModeChanged)
		assert.Equal(t, entity.ModeBestOf3, mode.Event.Mode)
		receiveEvent(t, conn, entity.EventScoreChanged)
		receiveEvent(t, conn, entity.EventBoardCleared)
		receiveEvent(t, conn, entity.EventStatusCleared)
		receiveEvent(t, conn, entity.EventTurnChanged)

		send(t, conn, actionState, nil)
		assert.Equal(t, entity.ModeBestOf3, receiveState(t, conn, actionState).State.Mode)
	})

	t.Run("Round and series resets clear the board", func(t *testing.T) {
		// Given: a client with one move played
		ts := newTestServer(t)
		conn, _ := dial(t, ts.url, nil)
		receiveState(t, conn, actionConnect)
		send(t, conn, actionCellPlay, RequestPayload{Cell: intPtr(0)})
		receiveEvent(t, conn, entity.EventCellUpdated)
		receiveEvent(t, conn, entity.EventTurnChanged)

		// When: the round is reset
		send(t, conn, actionRoundReset, nil)

		// Then: the board is cleared
		receiveEvent(t, conn, entity.EventBoardCleared)
		receiveEvent(t, conn, entity.EventStatusCleared)
		receiveEvent(t, conn, entity.EventTurnChanged)

		// When: the series is reset
		send(t, conn, actionSeriesReset, nil)

		// Then: the score is zeroed first
		receiveEvent(t, conn, entity.EventScoreChanged)
		receiveEvent(t, conn, entity.EventBoardCleared)
	})

	t.Run("Changing language re-renders the state", func(t *testing.T) {
		// Given: a Portuguese client
		ts := newTestServer(t)
		conn, _ := dial(t, ts.url, nil)
		receiveState(t, conn, actionConnect)

		// When: switching to English
		send(t, conn, actionLanguageSet, RequestPayload{Language: "en"})

		// Then: the state comes back in English
		payload := receiveState(t, conn, actionState)
		assert.Equal(t, "en", payload.Language)
		assert.Equal(t, "en-US", payload.LangTag)
		assert.Equal(t, "Current turn: Player X", payload.Status)
	})
}

func TestServer_Errors(t *testing.T) {
	ts := newTestServer(t)
	conn, _ := dial(t, ts.url, nil)
	receiveState(t, conn, actionConnect)

	tests := []struct {
		name    string
		action  string
		payload any
		want    string
	}{
		{name: "out of range cell", action: actionCellPlay, payload: RequestPayload{Cell: intPtr(9)}, want: "invalid cell index"},
		{name: "missing cell", action: actionCellPlay, payload: RequestPayload{}, want: "cell is required"},
		{name: "unknown mode", action: actionModeSet, payload: RequestPayload{Mode: "best-of-7"}, want: "unknown match mode"},
		{name: "unknown language", action: actionLanguageSet, payload: RequestPayload{Language: "de"}, want: "unknown language"},
		{name: "unknown action", action: "game:leave", want: "unknown action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// When: sending a bad command
			send(t, conn, tt.action, tt.payload)

			// Then: an error comes back and the connection stays usable
			assert.Contains(t, receiveError(t, conn), tt.want)
		})
	}

	t.Run("malformed JSON", func(t *testing.T) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
		assert.Contains(t, receiveError(t, conn), "invalid message")

		send(t, conn, actionState, nil)
		receiveState(t, conn, actionState)
	})
}

func TestServer_Disconnect(t *testing.T) {
	t.Run("Closing the connection saves the session and updates metrics", func(t *testing.T) {
		// Given: a connected client that played a move
		ts := newTestServer(t)
		conn, _ := dial(t, ts.url, http.Header{"Cookie": {sessionCookie + "=s1"}})
		receiveState(t, conn, actionConnect)
		send(t, conn, actionCellPlay, RequestPayload{Cell: intPtr(4)})
		receiveEvent(t, conn, entity.EventCellUpdated)
		receiveEvent(t, conn, entity.EventTurnChanged)
		require.Eventually(t, func() bool { return ts.metrics.Active() == 1 }, readTimeout, 10*time.Millisecond)

		// When: the client goes away
		require.NoError(t, conn.Close())

		// Then: the session is closed and the gauge drops
		require.Eventually(t, func() bool {
			return len(ts.sessions.closedSessions()) == 1
		}, readTimeout, 10*time.Millisecond)
		assert.Equal(t, []string{"s1"}, ts.sessions.closedSessions())
		assert.Equal(t, 0, ts.metrics.Active())
	})

	t.Run("Reconnecting resumes the saved board", func(t *testing.T) {
		// Given: a session whose board was saved
		ts := newTestServer(t)
		header := http.Header{"Cookie": {sessionCookie + "=s2"}}
		first, _ := dial(t, ts.url, header)
		receiveState(t, first, actionConnect)
		send(t, first, actionCellPlay, RequestPayload{Cell: intPtr(8)})
		receiveEvent(t, first, entity.EventCellUpdated)
		receiveEvent(t, first, entity.EventTurnChanged)
		require.NoError(t, first.Close())
		require.Eventually(t, func() bool {
			return len(ts.sessions.closedSessions()) == 1
		}, readTimeout, 10*time.Millisecond)

		// When: the same session connects again
		second, _ := dial(t, ts.url, header)

		// Then: the board and turn are restored
		payload := receiveState(t, second, actionConnect)
		assert.Equal(t, entity.X, payload.State.Board[8])
		assert.Equal(t, entity.O, payload.State.Current)
		assert.Equal(t, "Vez do jogador Jogador O", payload.Status)
	})
}

func TestServer_Countdown(t *testing.T) {
	t.Run("Restored finished round sends connect before its ticks and saves the reset", func(t *testing.T) {
		// Given: a stored session whose round ended in a draw
		ts := newTestServer(t)
		ts.sessions.store("s3", &entity.MatchState{
			Board:   entity.Board{entity.X, entity.O, entity.X, entity.X, entity.O, entity.O, entity.O, entity.X, entity.X},
			Current: entity.X,
			Mode:    entity.ModeSingle,
		})

		// When: the session connects again
		conn, _ := dial(t, ts.url, http.Header{"Cookie": {sessionCookie + "=s3"}})

		// Then: the finished board comes first, then the restarted countdown
		connect := receiveState(t, conn, actionConnect)
		assert.False(t, connect.State.RoundActive)
		assert.Equal(t, "Empate!", connect.Status)

		tick := receiveEvent(t, conn, entity.EventCountdownTick)
		require.NotNil(t, tick.Event.Remaining)
		assert.Equal(t, 5, *tick.Event.Remaining)

		// When: the countdown runs out
		for want := 4; want >= 0; want-- {
			ts.sessions.clock.Add(time.Second)
			tick = receiveEvent(t, conn, entity.EventCountdownTick)
			require.NotNil(t, tick.Event.Remaining)
			assert.Equal(t, want, *tick.Event.Remaining)
		}

		receiveEvent(t, conn, entity.EventBoardCleared)
		receiveEvent(t, conn, entity.EventStatusCleared)
		receiveEvent(t, conn, entity.EventTurnChanged)

		// Then: the fresh round is saved without any command from the client
		require.Eventually(t, func() bool {
			state := ts.sessions.stored("s3")
			return state != nil && state.RoundActive && state.Board == entity.Board{}
		}, readTimeout, 10*time.Millisecond)
		assert.Empty(t, ts.sessions.closedSessions())
	})
}

func intPtr(v int) *int {
	return &v
}
