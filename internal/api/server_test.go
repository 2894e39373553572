package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexfront/internal/engine"
	"github.com/talgya/hexfront/internal/game"
	"github.com/talgya/hexfront/internal/persistence"
)

type fixture struct {
	srv *Server
	eng *engine.Engine
	db  *persistence.DB
	h   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := game.DefaultConfig()
	cfg.Map.Seed = 5
	g, err := game.New(cfg)
	require.NoError(t, err)
	require.NoError(t, g.InitGame(20, 15))

	eng := engine.New(g, engine.Options{AIStartDelay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	go eng.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-eng.Done()
	})

	db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv := NewServer(eng, db, 0, "secret")
	return &fixture{srv: srv, eng: eng, db: db, h: srv.Handler()}
}

func (f *fixture) do(t *testing.T, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	var body struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}
	decode(t, f.do(t, http.MethodGet, "/api/health", ""), &body)
	assert.Equal(t, "ok", body.Status)
	_, err := time.Parse(time.RFC3339Nano, body.Timestamp)
	assert.NoError(t, err)
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	var body struct {
		Turn          int              `json:"turn"`
		Phase         string           `json:"phase"`
		CurrentPlayer string           `json:"current_player"`
		Seed          int64            `json:"seed"`
		Units         int              `json:"units"`
		Players       []map[string]any `json:"players"`
		Finished      bool             `json:"finished"`
	}
	decode(t, f.do(t, http.MethodGet, "/api/v1/status", ""), &body)
	assert.Equal(t, 1, body.Turn)
	assert.Equal(t, "player_turn", body.Phase)
	assert.Equal(t, "player1", body.CurrentPlayer)
	assert.Equal(t, int64(5), body.Seed)
	assert.Equal(t, 8, body.Units)
	assert.Len(t, body.Players, 2)
	assert.False(t, body.Finished)
}

func TestMap(t *testing.T) {
	f := newFixture(t)
	var body struct {
		Width  int        `json:"width"`
		Height int        `json:"height"`
		Cells  []cellView `json:"cells"`
	}
	decode(t, f.do(t, http.MethodGet, "/api/v1/map", ""), &body)
	assert.Equal(t, 20, body.Width)
	assert.Equal(t, 15, body.Height)
	require.Len(t, body.Cells, 300)
	assert.Equal(t, 0, body.Cells[0].R)
	assert.Equal(t, 0, body.Cells[0].Q)
	assert.Equal(t, 14, body.Cells[299].R)
}

func TestUnitsAndHighlights(t *testing.T) {
	f := newFixture(t)
	var all []map[string]any
	decode(t, f.do(t, http.MethodGet, "/api/v1/units", ""), &all)
	assert.Len(t, all, 8)

	var mine []map[string]any
	decode(t, f.do(t, http.MethodGet, "/api/v1/units?player=player1", ""), &mine)
	require.Len(t, mine, 4)

	id := mine[0]["id"].(string)
	var hl struct {
		UnitID     string   `json:"unit_id"`
		Movable    []string `json:"movable"`
		Attackable []string `json:"attackable"`
	}
	decode(t, f.do(t, http.MethodGet, "/api/v1/unit/"+id+"/highlights", ""), &hl)
	assert.Equal(t, id, hl.UnitID)
	assert.NotEmpty(t, hl.Movable)
	assert.Empty(t, hl.Attackable)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/v1/unit/ghost/highlights", "").Code)
}

func TestCitiesAndEvents(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eng.Act(context.Background(), func(g *game.Game) error {
		for _, u := range g.PlayerUnits("player1") {
			if u.Type == "settler" {
				g.FoundCity(u.ID)
			}
		}
		return nil
	}))

	var cities []map[string]any
	decode(t, f.do(t, http.MethodGet, "/api/v1/cities", ""), &cities)
	require.Len(t, cities, 1)
	assert.Equal(t, true, cities[0]["is_capital"])

	var events []game.Event
	decode(t, f.do(t, http.MethodGet, "/api/v1/events?category=city", ""), &events)
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Description, "capital")
}

func TestMatches(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	require.NoError(t, f.db.RecordMatch(engine.Outcome{
		MatchID: "m1", Seed: 1, Width: 20, Height: 15, Winner: "player2",
		Reason: engine.ReasonElimination, Turns: 9, StartedAt: now, FinishedAt: now,
		Events: []game.Event{{Turn: 9, Category: game.CategoryGameOver, Description: "over"}},
	}))

	var matches []persistence.Match
	decode(t, f.do(t, http.MethodGet, "/api/v1/matches", ""), &matches)
	require.Len(t, matches, 1)
	assert.Equal(t, "player2", matches[0].Winner)

	var events []game.Event
	decode(t, f.do(t, http.MethodGet, "/api/v1/matches/m1/events", ""), &events)
	assert.Len(t, events, 1)
}

func TestRestartRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodPost, "/api/v1/restart", "").Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodPost, "/api/v1/restart", "wrong").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, f.do(t, http.MethodGet, "/api/v1/restart", "secret").Code)

	var body struct {
		Success bool  `json:"success"`
		Seed    int64 `json:"seed"`
	}
	decode(t, f.do(t, http.MethodPost, "/api/v1/restart", "secret"), &body)
	assert.True(t, body.Success)

	f.srv.AdminKey = ""
	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodPost, "/api/v1/restart", "secret").Code)
}

func TestCheckBearerToken(t *testing.T) {
	srv := &Server{AdminKey: "secret"}
	cases := []struct {
		name   string
		header string
		want   bool
	}{
		{"exact key", "Bearer secret", true},
		{"same length", "Bearer secreT", false},
		{"prefix of key", "Bearer secre", false},
		{"key plus suffix", "Bearer secrets", false},
		{"empty token", "Bearer ", false},
		{"wrong scheme", "Basic secret", false},
		{"no header", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/restart", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			assert.Equal(t, tc.want, srv.checkBearerToken(req))
		})
	}

	srv.AdminKey = ""
	req := httptest.NewRequest(http.MethodPost, "/api/v1/restart", nil)
	req.Header.Set("Authorization", "Bearer ")
	assert.False(t, srv.checkBearerToken(req), "an unset key never matches")
}

func TestStreamForwardsEvents(t *testing.T) {
	f := newFixture(t)
	ts := httptest.NewServer(f.h)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var first streamMsg
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "status", first.Type)

	require.NoError(t, f.eng.Act(context.Background(), func(g *game.Game) error {
		g.EndTurn()
		return nil
	}))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg struct {
			Type string     `json:"type"`
			Data game.Event `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == "event" && msg.Data.PlayerID == "player2" && msg.Data.Category == game.CategoryTurn {
			break
		}
	}
}

func TestStreamRateLimited(t *testing.T) {
	f := newFixture(t)
	f.srv.StreamLimiter = NewRateLimiter(1, time.Minute)
	h := f.srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stream", nil)
	req.RemoteAddr = "10.0.0.1:4000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, http.StatusTooManyRequests, rec.Code, "first attempt passes the limiter")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "buckets are per IP")
	assert.Equal(t, 61, rl.RetryAfter("a"))

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("a"))

	now = now.Add(3 * time.Minute)
	rl.cleanup()
	assert.Zero(t, rl.RetryAfter("a"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	assert.Equal(t, "192.0.2.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(req))
}
