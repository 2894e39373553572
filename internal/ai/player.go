// Package ai implements the rule-based computer opponent. Each AI turn walks
// the player's units in order: observe the board, decide on a target, act
// through the game controller.
package ai

import (
	"context"
	"log/slog"

	"github.com/talgya/hexfront/internal/game"
	"github.com/talgya/hexfront/internal/units"
	"github.com/talgya/hexfront/internal/world"
)

// Player drives every AI-controlled faction.
type Player struct {
	Pacer Pacer
}

// New creates an AI player paced by p. A nil pacer means no delay.
func New(p Pacer) *Player {
	if p == nil {
		p = NoDelay{}
	}
	return &Player{Pacer: p}
}

// TurnReport summarises one AI turn.
type TurnReport struct {
	PlayerID string `json:"player_id"`
	Attacks  int    `json:"attacks"`
	Kills    int    `json:"kills"`
	Losses   int    `json:"losses"`
	Moves    int    `json:"moves"`
	Ended    bool   `json:"ended"` // The turn was handed to the next player
}

// RunTurn plays the current AI player's turn and then ends it. It stops early
// when the phase changes under it, and returns ctx's error without ending the
// turn when the pacer is cancelled. Calling it outside an AI turn does nothing.
func (p *Player) RunTurn(ctx context.Context, g *game.Game) (TurnReport, error) {
	cur, ok := g.CurrentPlayer()
	if !ok || !cur.IsAI || g.Phase != game.PhaseAITurn {
		return TurnReport{}, nil
	}
	report := TurnReport{PlayerID: cur.ID}
	mine := g.PlayerUnits(cur.ID)

	for _, u := range mine {
		if !stillActing(g, cur.ID) {
			break
		}
		if g.Unit(u.ID) == nil {
			continue // lost earlier this turn
		}
		p.actUnit(g, u, &report)
		if err := p.Pacer.Pause(ctx); err != nil {
			return report, err
		}
	}

	if err := p.Pacer.Pause(ctx); err != nil {
		return report, err
	}
	if stillActing(g, cur.ID) {
		report.Ended = g.EndTurn()
	}

	slog.Debug("ai turn finished",
		"player", report.PlayerID,
		"attacks", report.Attacks,
		"kills", report.Kills,
		"moves", report.Moves,
		"phase", g.Phase,
	)
	return report, nil
}

func stillActing(g *game.Game, playerID string) bool {
	cur, ok := g.CurrentPlayer()
	return ok && cur.ID == playerID && g.Phase == game.PhaseAITurn
}

// actUnit attacks if anything is in range, then spends remaining movement
// closing on the nearest enemy.
func (p *Player) actUnit(g *game.Game, u *units.Unit, report *TurnReport) {
	if !u.HasAttacked {
		if target := ChooseTarget(g, u); target != nil {
			if res := g.AttackUnit(u.ID, target.ID); res != nil {
				report.Attacks++
				if res.DefenderKilled {
					report.Kills++
				}
				if res.AttackerKilled {
					report.Losses++
					return
				}
			}
		}
	}
	if u.MovementPoints <= 0 || g.Phase != game.PhaseAITurn {
		return
	}
	if dest, ok := ChooseDestination(g, u); ok {
		if g.MoveUnit(u.ID, dest).Success {
			report.Moves++
		}
	}
}

// ChooseTarget picks the weakest enemy within attack range. Ties go to the
// unit created first.
func ChooseTarget(g *game.Game, u *units.Unit) *units.Unit {
	reach := u.Stats().AttackRange()
	var best *units.Unit
	for _, e := range g.Units() {
		if e.PlayerID == u.PlayerID || world.Distance(u.Coord, e.Coord) > reach {
			continue
		}
		if best == nil || e.Health < best.Health {
			best = e
		}
	}
	return best
}

// NearestEnemy returns the enemy closest to u by hex distance. Ties go to the
// unit created first.
func NearestEnemy(g *game.Game, u *units.Unit) *units.Unit {
	var nearest *units.Unit
	bestDist := 0
	for _, e := range g.Units() {
		if e.PlayerID == u.PlayerID {
			continue
		}
		d := world.Distance(u.Coord, e.Coord)
		if nearest == nil || d < bestDist {
			nearest, bestDist = e, d
		}
	}
	return nearest
}

// ChooseDestination picks the reachable tile closest to the nearest enemy.
// Ties go to the tile discovered first. It reports false when there is no
// enemy or nowhere to go.
func ChooseDestination(g *game.Game, u *units.Unit) (world.HexCoord, bool) {
	enemy := NearestEnemy(g, u)
	if enemy == nil {
		return world.HexCoord{}, false
	}
	var (
		best     world.HexCoord
		bestDist int
		found    bool
	)
	for _, c := range g.MovableCoordList(u.ID) {
		d := world.Distance(c, enemy.Coord)
		if !found || d < bestDist {
			best, bestDist, found = c, d, true
		}
	}
	return best, found
}
