package game

import (
	"fmt"
	"log/slog"
)

// Event categories.
const (
	CategoryTurn       = "turn"
	CategoryMovement   = "movement"
	CategoryCombat     = "combat"
	CategoryCity       = "city"
	CategoryProduction = "production"
	CategoryGameOver   = "game_over"
)

// maxEvents bounds the in-memory event log.
const maxEvents = 100

// Event is a narrated state change.
type Event struct {
	Turn        int    `json:"turn" db:"turn"`
	Category    string `json:"category" db:"category"`
	Description string `json:"description" db:"description"`
	PlayerID    string `json:"player_id,omitempty" db:"player_id"`
}

// logEvent records an event, trims the log, and notifies the OnEvent hook.
func (g *Game) logEvent(category, playerID, format string, args ...any) {
	e := Event{
		Turn:        g.Turn,
		Category:    category,
		Description: fmt.Sprintf(format, args...),
		PlayerID:    playerID,
	}
	g.events = append(g.events, e)
	if len(g.events) > maxEvents {
		g.events = g.events[len(g.events)-maxEvents:]
	}
	slog.Debug("game event", "turn", e.Turn, "category", e.Category, "player", e.PlayerID, "description", e.Description)
	if g.OnEvent != nil {
		g.OnEvent(e)
	}
}

// Events returns a copy of the most recent events, oldest first.
func (g *Game) Events() []Event {
	out := make([]Event, len(g.events))
	copy(out, g.events)
	return out
}
