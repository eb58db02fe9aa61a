package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/cardcity/internal/catalog"
	"github.com/talgya/cardcity/internal/config"
	"github.com/talgya/cardcity/internal/engine"
	"github.com/talgya/cardcity/internal/errx"
	"github.com/talgya/cardcity/internal/persistence"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, cfg config.ServerConfig, store Store) *Server {
	t.Helper()
	ecfg := engine.DefaultConfig()
	ecfg.Seed = 42
	return New(cfg, engine.New(ecfg, nil), store)
}

func openStore(t *testing.T) *persistence.DB {
	t.Helper()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "saves.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{}, nil)
	w, body := do(t, s.Handler(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestIntentFlow(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{}, nil)
	h := s.Handler()

	w, body := do(t, h, http.MethodGet, "/api/v1/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["started"])

	w, body = do(t, h, http.MethodPost, "/api/v1/intents", engine.Intent{Type: engine.IntentRoll})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(errx.CodeInvalidIntent), body["code"])
	assert.Equal(t, string(engine.ReasonNoGame), body["reason"])

	w, body = do(t, h, http.MethodPost, "/api/v1/intents", engine.Intent{Type: engine.IntentStartGame})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, body["code"])
	assert.NotEmpty(t, body["events"])
	state := body["state"].(map[string]any)
	assert.Equal(t, true, state["started"])
	assert.EqualValues(t, 1, state["day"])

	hand := state["hand"].([]any)
	require.Len(t, hand, 4)
	first := hand[0].(map[string]any)["card"].(string)

	w, body = do(t, h, http.MethodPost, "/api/v1/intents", map[string]any{"type": "toggle_card", "card": first})
	require.Equal(t, http.StatusOK, w.Code)
	hand = body["state"].(map[string]any)["hand"].([]any)
	assert.Equal(t, true, hand[0].(map[string]any)["selected"])

	w, body = do(t, h, http.MethodPost, "/api/v1/intents", map[string]any{"type": "select_cell", "x": 9, "y": 9})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(engine.ReasonUnknownCell), body["reason"])
}

func TestIntentMalformed(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{}, nil)

	w, body := do(t, s.Handler(), http.MethodPost, "/api/v1/intents", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(errx.CodeReqParamError), body["code"])

	w, body = do(t, s.Handler(), http.MethodPost, "/api/v1/intents", `{"type":"toggle_card","card":"Wizard"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(errx.CodeReqParamError), body["code"])

	w, body = do(t, s.Handler(), http.MethodPost, "/api/v1/intents", `{"type":"dance"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(engine.ReasonUnknownIntent), body["reason"])
}

func TestCatalog(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{}, nil)
	w, body := do(t, s.Handler(), http.MethodGet, "/api/v1/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["actions"], len(catalog.Actions()))
	assert.Len(t, body["citizens"], len(catalog.Citizens()))
	assert.Contains(t, body["starting"], "Home Owner")
}

func TestSaveListLoad(t *testing.T) {
	store := openStore(t)
	s := newTestServer(t, config.ServerConfig{}, store)
	h := s.Handler()

	w, body := do(t, h, http.MethodPost, "/api/v1/save", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(engine.ReasonNoGame), body["reason"])

	do(t, h, http.MethodPost, "/api/v1/intents", engine.Intent{Type: engine.IntentStartGame})
	do(t, h, http.MethodPost, "/api/v1/intents", engine.Intent{Type: engine.IntentStartNewDay})

	w, body = do(t, h, http.MethodPost, "/api/v1/save", nil)
	require.Equal(t, http.StatusOK, w.Code)
	id := body["id"].(string)
	assert.Equal(t, s.Engine().ID().String(), id)

	w, body = do(t, h, http.MethodGet, "/api/v1/saves", nil)
	require.Equal(t, http.StatusOK, w.Code)
	saves := body["saves"].([]any)
	require.Len(t, saves, 1)
	assert.Equal(t, id, saves[0].(map[string]any)["id"])
	assert.EqualValues(t, 2, saves[0].(map[string]any)["day"])

	// Start over so the load is observable.
	do(t, h, http.MethodPost, "/api/v1/intents", engine.Intent{Type: engine.IntentStartGame})
	require.NotEqual(t, id, s.Engine().ID().String())

	w, body = do(t, h, http.MethodPost, "/api/v1/load/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := body["state"].(map[string]any)
	assert.Equal(t, id, state["game_id"])
	assert.EqualValues(t, 2, state["day"])
	assert.Equal(t, id, s.Engine().ID().String())

	w, body = do(t, h, http.MethodPost, "/api/v1/load/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(errx.CodeReqParamError), body["code"])

	w, body = do(t, h, http.MethodPost, "/api/v1/load/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(errx.CodeNotFound), body["code"])
}

func TestSavesDisabled(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{}, nil)
	for _, r := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/save"},
		{http.MethodGet, "/api/v1/saves"},
		{http.MethodPost, "/api/v1/load/" + uuid.NewString()},
	} {
		w, _ := do(t, s.Handler(), r.method, r.path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, r.path)
	}
}

func TestIntentRateLimit(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{IntentsPerMinute: 2}, nil)
	h := s.Handler()

	for i := 0; i < 2; i++ {
		w, _ := do(t, h, http.MethodPost, "/api/v1/intents", engine.Intent{Type: engine.IntentStartGame})
		require.Equal(t, http.StatusOK, w.Code)
	}
	w, body := do(t, h, http.MethodPost, "/api/v1/intents", engine.Intent{Type: engine.IntentStartGame})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limited", body["reason"])

	// Reads are not limited.
	w, _ = do(t, h, http.MethodGet, "/api/v1/state", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCors(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{CORSOrigins: []string{"https://city.example"}}, nil)

	for origin, want := range map[string]string{
		"http://localhost:5173": "http://localhost:5173",
		"https://city.example":  "https://city.example",
		"https://evil.example":  "",
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/state", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		assert.Equal(t, want, w.Header().Get("Access-Control-Allow-Origin"), origin)
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/intents", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
	assert.Equal(t, 60, rl.RetryAfter("a"))
	assert.Equal(t, 0, rl.RetryAfter("nobody"))

	now = now.Add(500 * time.Millisecond)
	assert.Equal(t, 60, rl.RetryAfter("a"))
	now = now.Add(59 * time.Second)
	assert.Equal(t, 1, rl.RetryAfter("a"))
	now = now.Add(500 * time.Millisecond)
	assert.Equal(t, 0, rl.RetryAfter("a"))

	assert.True(t, rl.Allow("a"))

	now = now.Add(3 * time.Minute)
	rl.cleanup()
	assert.Empty(t, rl.buckets)
}

func TestDecodeIntent(t *testing.T) {
	in, err := decodeIntent([]byte(`{"type":"toggle_card","card":"home_owner"}`))
	require.NoError(t, err)
	assert.Equal(t, engine.IntentToggleCard, in.Type)
	assert.Equal(t, catalog.HomeOwner, in.Card)

	in, err = decodeIntent([]byte(`{"type":"choose_action","index":"2"}`))
	require.NoError(t, err)
	assert.Equal(t, 2, in.Index)

	in, err = decodeIntent([]byte(`{"type":"select_cell","x":1,"y":-1}`))
	require.NoError(t, err)
	assert.Equal(t, 1, in.X)
	assert.Equal(t, -1, in.Y)

	_, err = decodeIntent([]byte(`{"type":"toggle_card","card":"Wizard"}`))
	assert.Error(t, err)
	_, err = decodeIntent([]byte(`[1,2]`))
	assert.Error(t, err)
}

func readFrame(t *testing.T, conn *websocket.Conn) StreamMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var m StreamMessage
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

// dialStream runs the hub and connects one websocket subscriber.
func dialStream(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.hub.Run(ctx)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestStream(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{}, nil)
	conn := dialStream(t, s)

	first := readFrame(t, conn)
	require.Equal(t, KindSnapshot, first.Kind)
	assert.False(t, first.State.Started)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "start_game"}))
	got := map[string]StreamMessage{}
	for i := 0; i < 2; i++ {
		m := readFrame(t, conn)
		got[m.Kind] = m
	}
	require.Contains(t, got, KindResult)
	require.Contains(t, got, KindSnapshot)
	assert.NotEmpty(t, got[KindResult].Events)
	assert.True(t, got[KindSnapshot].State.Started)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "roll"}))
	m := readFrame(t, conn)
	require.Equal(t, KindError, m.Kind)
	assert.Equal(t, errx.CodeInvalidIntent, m.Error.Code)
	assert.Equal(t, string(engine.ReasonNoActionChosen), m.Error.Reason)

	// HTTP intents reach stream subscribers too.
	w, _ := do(t, s.Handler(), http.MethodPost, "/api/v1/intents", engine.Intent{Type: engine.IntentStartNewDay})
	require.Equal(t, http.StatusOK, w.Code)
	m = readFrame(t, conn)
	require.Equal(t, KindSnapshot, m.Kind)
	assert.Equal(t, 2, m.State.Day)
}

func TestStreamEndsOnNewestState(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{}, nil)
	conn := dialStream(t, s)
	require.Equal(t, KindSnapshot, readFrame(t, conn).Kind)

	w, _ := do(t, s.Handler(), http.MethodPost, "/api/v1/intents", engine.Intent{Type: engine.IntentStartGame})
	require.Equal(t, http.StatusOK, w.Code)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			do(t, s.Handler(), http.MethodPost, "/api/v1/intents", engine.Intent{Type: engine.IntentStartNewDay})
		}()
	}
	wg.Wait()
	final := s.Engine().Day()
	require.Equal(t, 41, final)

	last := 0
	for last != final {
		m := readFrame(t, conn)
		require.Equal(t, KindSnapshot, m.Kind)
		if !m.State.Started {
			continue
		}
		assert.Greater(t, m.State.Day, last, "snapshots must not go back in time")
		last = m.State.Day
	}
}

func TestHubCoalescesSnapshots(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	cl := newClient(h, nil, "")
	require.True(t, h.join(cl))

	for day := 1; day <= 500; day++ {
		h.Publish(engine.Snapshot{Started: true, Day: day})
	}

	last := 0
	deadline := time.After(5 * time.Second)
	for last != 500 {
		select {
		case <-cl.wake:
			b, ok := cl.nextSnapshot()
			if !ok {
				continue
			}
			var m StreamMessage
			require.NoError(t, json.Unmarshal(b, &m))
			require.Greater(t, m.State.Day, last)
			last = m.State.Day
		case <-deadline:
			require.FailNow(t, "newest snapshot never delivered", "last day %d", last)
		}
	}

	_, ok := cl.nextSnapshot()
	assert.False(t, ok, "a snapshot is written once")
}

func TestStreamIntentsAreRateLimited(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{IntentsPerMinute: 1}, nil)
	conn := dialStream(t, s)
	require.Equal(t, KindSnapshot, readFrame(t, conn).Kind)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "start_game"}))
	kinds := []string{readFrame(t, conn).Kind, readFrame(t, conn).Kind}
	assert.ElementsMatch(t, []string{KindResult, KindSnapshot}, kinds)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "start_new_day"}))
	m := readFrame(t, conn)
	require.Equal(t, KindError, m.Kind)
	assert.Equal(t, errx.CodeReqParamError, m.Error.Code)
	assert.Equal(t, "rate_limited", m.Error.Reason)
	assert.Equal(t, 1, s.Engine().Day())
}
