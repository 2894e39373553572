package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/talgya/hexfront/internal/game"
)

// Reasons a match ends.
const (
	ReasonElimination = "elimination" // A player lost every unit
	ReasonTurnLimit   = "turn_limit"  // MaxTurns reached, drawn
)

// Outcome is the record of a finished match.
type Outcome struct {
	MatchID    string       `json:"match_id"`
	Seed       int64        `json:"seed"`
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	Winner     string       `json:"winner,omitempty"` // Empty for a draw
	Reason     string       `json:"reason"`
	Turns      int          `json:"turns"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Events     []game.Event `json:"events,omitempty"`
}

func newOutcome(g *game.Game, reason string, started time.Time) Outcome {
	out := Outcome{
		MatchID:    uuid.NewString(),
		Seed:       g.Seed,
		Width:      g.Map.Width,
		Height:     g.Map.Height,
		Reason:     reason,
		Turns:      g.Turn,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Events:     g.Events(),
	}
	if reason == ReasonElimination {
		out.Winner = g.Winner
	}
	return out
}
