// Package api provides the HTTP API for watching a match.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"

	"github.com/talgya/hexfront/internal/cities"
	"github.com/talgya/hexfront/internal/engine"
	"github.com/talgya/hexfront/internal/game"
	"github.com/talgya/hexfront/internal/persistence"
	"github.com/talgya/hexfront/internal/units"
	"github.com/talgya/hexfront/internal/world"
)

// Server serves the match state over HTTP.
type Server struct {
	Engine   *engine.Engine
	DB       *persistence.DB // Optional; match history is unavailable without it
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	StreamLimiter *RateLimiter // Per-IP limit on stream upgrades
	MaxStreams    int32        // Concurrent stream connections

	streamConns int32
	startedAt   time.Time
}

// NewServer creates a server with the default stream limits.
func NewServer(eng *engine.Engine, db *persistence.DB, port int, adminKey string) *Server {
	return &Server{
		Engine:        eng,
		DB:            db,
		Port:          port,
		AdminKey:      adminKey,
		StreamLimiter: NewRateLimiter(20, time.Minute),
		MaxStreams:    32,
		startedAt:     time.Now(),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()

	// Public endpoints (GET, read-only).
	v1.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	v1.HandleFunc("/map", s.handleMap).Methods(http.MethodGet)
	v1.HandleFunc("/units", s.handleUnits).Methods(http.MethodGet)
	v1.HandleFunc("/unit/{id}/highlights", s.handleHighlights).Methods(http.MethodGet)
	v1.HandleFunc("/cities", s.handleCities).Methods(http.MethodGet)
	v1.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	v1.HandleFunc("/matches", s.handleMatches).Methods(http.MethodGet)
	v1.HandleFunc("/matches/{id}/events", s.handleMatchEvents).Methods(http.MethodGet)

	// Websocket event stream.
	v1.HandleFunc("/stream", RateLimitMiddleware(s.StreamLimiter, s.handleStream)).Methods(http.MethodGet)

	// Admin endpoints (POST, require bearer token).
	v1.HandleFunc("/restart", s.adminOnly(s.handleRestart)).Methods(http.MethodPost)

	return corsMiddleware(r)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go s.StreamLimiter.RunCleanup(ctx, time.Hour)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "history", s.DB != nil)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// corsMiddleware allows browser spectators from any origin to read.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || s.AdminKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.AdminKey)) == 1
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no HEXFRONT_API_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var status map[string]any
	s.Engine.View(func(g *game.Game) {
		current := ""
		if p, ok := g.CurrentPlayer(); ok && g.Phase != game.PhaseSetup {
			current = p.ID
		}
		players := make([]map[string]any, 0, len(g.Players))
		for _, p := range g.Players {
			players = append(players, map[string]any{
				"id":     p.ID,
				"name":   p.Name,
				"is_ai":  p.IsAI,
				"color":  p.Color,
				"units":  len(g.PlayerUnits(p.ID)),
				"cities": len(g.PlayerCities(p.ID)),
			})
		}
		status = map[string]any{
			"name":           "hexfront",
			"turn":           g.Turn,
			"phase":          g.Phase,
			"current_player": current,
			"winner":         g.Winner,
			"seed":           g.Seed,
			"width":          g.Map.Width,
			"height":         g.Map.Height,
			"units":          len(g.Units()),
			"cities":         len(g.Cities()),
			"players":        players,
		}
	})
	started := s.Engine.StartedAt()
	status["finished"] = s.Engine.Finished()
	status["match_started"] = humanize.Time(started)
	status["server_started"] = humanize.Time(s.startedAt)
	writeJSON(w, status)
}

type cellView struct {
	Q       int           `json:"q"`
	R       int           `json:"r"`
	Terrain world.Terrain `json:"terrain"`
	UnitID  string        `json:"unit_id,omitempty"`
	CityID  string        `json:"city_id,omitempty"`
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	var (
		width, height int
		cells         []cellView
	)
	s.Engine.View(func(g *game.Game) {
		width, height = g.Map.Width, g.Map.Height
		cells = make([]cellView, 0, g.Map.CellCount())
		for _, c := range g.Map.Cells {
			cells = append(cells, cellView{Q: c.Coord.Q, R: c.Coord.R, Terrain: c.Terrain, UnitID: c.UnitID, CityID: c.CityID})
		}
	})
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].R != cells[j].R {
			return cells[i].R < cells[j].R
		}
		return cells[i].Q < cells[j].Q
	})
	writeJSON(w, map[string]any{
		"width":  width,
		"height": height,
		"cells":  cells,
	})
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	player := r.URL.Query().Get("player")
	out := []units.Unit{}
	s.Engine.View(func(g *game.Game) {
		for _, u := range g.Units() {
			if player == "" || u.PlayerID == player {
				out = append(out, *u)
			}
		}
	})
	writeJSON(w, out)
}

func (s *Server) handleHighlights(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var found bool
	var movable, attackable []string
	s.Engine.View(func(g *game.Game) {
		if g.Unit(id) == nil {
			return
		}
		found = true
		movable = g.MovableCoords(id).Keys()
		attackable = g.AttackableCoords(id).Keys()
	})
	if !found {
		http.Error(w, "unit not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"unit_id":    id,
		"movable":    movable,
		"attackable": attackable,
	})
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	out := []cities.City{}
	s.Engine.View(func(g *game.Game) {
		for _, c := range g.Cities() {
			cp := *c
			cp.ProductionQueue = make([]*cities.ProductionQueueItem, 0, len(c.ProductionQueue))
			for _, q := range c.ProductionQueue {
				item := *q
				cp.ProductionQueue = append(cp.ProductionQueue, &item)
			}
			out = append(out, cp)
		}
	})
	writeJSON(w, out)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 50, 100)
	category := r.URL.Query().Get("category")

	var events []game.Event
	s.Engine.View(func(g *game.Game) {
		events = g.Events()
	})

	if category != "" {
		filtered := []game.Event{}
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	writeJSON(w, events[start:])
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "match history disabled", http.StatusServiceUnavailable)
		return
	}
	matches, err := s.DB.RecentMatches(queryLimit(r, 20, 200))
	if err != nil {
		slog.Error("list matches", "error", err)
		http.Error(w, "failed to load matches", http.StatusInternalServerError)
		return
	}
	writeJSON(w, matches)
}

func (s *Server) handleMatchEvents(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "match history disabled", http.StatusServiceUnavailable)
		return
	}
	events, err := s.DB.MatchEvents(mux.Vars(r)["id"])
	if err != nil {
		slog.Error("load match events", "error", err)
		http.Error(w, "failed to load events", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []game.Event{}
	}
	writeJSON(w, events)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Restart(r.Context()); err != nil {
		slog.Error("restart failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var seed int64
	s.Engine.View(func(g *game.Game) { seed = g.Seed })
	slog.Info("match restarted via API", "seed", seed)
	writeJSON(w, map[string]any{"success": true, "seed": seed})
}

func queryLimit(r *http.Request, def, ceiling int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= ceiling {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
