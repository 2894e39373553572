package api

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/hexfront/internal/game"
)

const (
	streamCatchUp   = 50
	streamPing      = 30 * time.Second
	streamWriteWait = 10 * time.Second
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// streamMsg is the envelope for every websocket frame.
type streamMsg struct {
	Type string `json:"type"` // "event" or "status"
	Data any    `json:"data"`
}

// handleStream upgrades to a websocket, replays recent events and then
// forwards every new one.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	current := atomic.AddInt32(&s.streamConns, 1)
	defer atomic.AddInt32(&s.streamConns, -1)
	if s.MaxStreams > 0 && current > s.MaxStreams {
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("stream upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := s.Engine.Subscribe(64)
	defer unsubscribe()

	var recent []game.Event
	var status map[string]any
	s.Engine.View(func(g *game.Game) {
		recent = g.Events()
		status = map[string]any{"turn": g.Turn, "phase": g.Phase, "winner": g.Winner}
	})
	if len(recent) > streamCatchUp {
		recent = recent[len(recent)-streamCatchUp:]
	}
	if err := send(conn, streamMsg{Type: "status", Data: status}); err != nil {
		return
	}
	for _, e := range recent {
		if err := send(conn, streamMsg{Type: "event", Data: e}); err != nil {
			return
		}
	}

	ip := clientIP(r)
	slog.Info("stream client connected", "ip", ip)
	defer slog.Info("stream client disconnected", "ip", ip)

	// Spectators never send anything meaningful; reading only detects close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPing)
	defer ping.Stop()

	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := send(conn, streamMsg{Type: "event", Data: e}); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func send(conn *websocket.Conn, msg streamMsg) error {
	conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(msg)
}
