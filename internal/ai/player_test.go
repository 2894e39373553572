package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexfront/internal/game"
	"github.com/talgya/hexfront/internal/units"
	"github.com/talgya/hexfront/internal/world"
)

func plainsMap(width, height int) *world.Map {
	m := world.NewMap(width, height)
	for r := 0; r < height; r++ {
		lo, hi := world.RowRange(width, r)
		for q := lo; q < hi; q++ {
			m.Set(&world.Cell{Coord: world.HexCoord{Q: q, R: r}, Terrain: world.TerrainPlains})
		}
	}
	return m
}

// aiFirst returns a started game where the AI (player2) moves first.
func aiFirst(t *testing.T) *game.Game {
	t.Helper()
	cfg := game.DefaultConfig()
	cfg.Players[0], cfg.Players[1] = cfg.Players[1], cfg.Players[0]
	g, err := game.New(cfg)
	require.NoError(t, err)
	g.Start(plainsMap(12, 12))
	require.Equal(t, game.PhaseAITurn, g.Phase)
	return g
}

func place(t *testing.T, g *game.Game, ut units.UnitType, player string, q, r int) *units.Unit {
	t.Helper()
	coord := world.HexCoord{Q: q, R: r}
	require.NotNil(t, g.Map.Get(coord), "(%d,%d) is off the board", q, r)
	u, ok := g.SpawnUnit(ut, player, coord)
	require.True(t, ok)
	return u
}

func TestChooseTargetPrefersWeakest(t *testing.T) {
	g := aiFirst(t)
	archer := place(t, g, units.TypeArcher, "player2", 5, 5)
	strong := place(t, g, units.TypeWarrior, "player1", 6, 5)
	weak := place(t, g, units.TypeWarrior, "player1", 4, 5)
	place(t, g, units.TypeWarrior, "player1", 9, 5) // out of range
	weak.Health = 40

	assert.Equal(t, weak, ChooseTarget(g, archer))

	weak.Health = strong.Health
	assert.Equal(t, strong, ChooseTarget(g, archer), "ties go to the first created")
}

func TestChooseTargetNoneInRange(t *testing.T) {
	g := aiFirst(t)
	w := place(t, g, units.TypeWarrior, "player2", 2, 2)
	place(t, g, units.TypeWarrior, "player1", 5, 2)
	assert.Nil(t, ChooseTarget(g, w))
}

func TestChooseDestinationClosesDistance(t *testing.T) {
	g := aiFirst(t)
	c := place(t, g, units.TypeCavalry, "player2", 1, 5)
	near := place(t, g, units.TypeWarrior, "player1", 7, 5)
	place(t, g, units.TypeWarrior, "player1", 10, 1)

	assert.Equal(t, near, NearestEnemy(g, c))
	dest, ok := ChooseDestination(g, c)
	require.True(t, ok)
	assert.Equal(t, 2, world.Distance(dest, near.Coord), "four steps closer")
	assert.True(t, g.MovableCoords(c.ID).Has(dest))
}

func TestChooseDestinationWithoutEnemies(t *testing.T) {
	g := aiFirst(t)
	w := place(t, g, units.TypeWarrior, "player2", 2, 2)
	_, ok := ChooseDestination(g, w)
	assert.False(t, ok)
}

func TestRunTurnAttacksMovesAndEnds(t *testing.T) {
	g := aiFirst(t)
	attacker := place(t, g, units.TypeWarrior, "player2", 3, 3)
	mover := place(t, g, units.TypeWarrior, "player2", 3, 8)
	victim := place(t, g, units.TypeWarrior, "player1", 4, 3)
	place(t, g, units.TypeWarrior, "player1", 6, 8)
	start := mover.Coord

	report, err := New(NoDelay{}).RunTurn(context.Background(), g)
	require.NoError(t, err)

	assert.Equal(t, "player2", report.PlayerID)
	assert.Equal(t, 1, report.Attacks)
	assert.Equal(t, 1, report.Moves)
	assert.True(t, report.Ended)
	assert.Less(t, victim.Health, 100)
	assert.Equal(t, world.HexCoord{Q: 3, R: 3}, attacker.Coord, "attacking spends all movement")
	assert.NotEqual(t, start, mover.Coord)

	assert.Equal(t, game.PhasePlayerTurn, g.Phase)
	assert.Equal(t, 1, g.CurrentPlayerIndex)
}

func TestRunTurnWithNoUnitsStillEnds(t *testing.T) {
	g := aiFirst(t)
	place(t, g, units.TypeWarrior, "player1", 4, 3)

	report, err := New(nil).RunTurn(context.Background(), g)
	require.NoError(t, err)
	assert.True(t, report.Ended)
	assert.Equal(t, game.PhasePlayerTurn, g.Phase)
}

func TestRunTurnStopsAtGameOver(t *testing.T) {
	g := aiFirst(t)
	place(t, g, units.TypeWarrior, "player2", 3, 3)
	second := place(t, g, units.TypeWarrior, "player2", 6, 8)
	victim := place(t, g, units.TypeArcher, "player1", 4, 3)
	victim.Health = 1

	report, err := New(NoDelay{}).RunTurn(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Kills)
	assert.False(t, report.Ended)
	assert.Equal(t, game.PhaseGameOver, g.Phase)
	assert.Equal(t, "player2", g.Winner)
	assert.Equal(t, world.HexCoord{Q: 6, R: 8}, second.Coord, "no unit acts after the game ends")
}

func TestRunTurnOutsideAITurnIsNoop(t *testing.T) {
	cfg := game.DefaultConfig()
	g, err := game.New(cfg)
	require.NoError(t, err)
	g.Start(plainsMap(8, 8))
	w := place(t, g, units.TypeWarrior, "player1", 2, 2)

	report, err := New(nil).RunTurn(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, TurnReport{}, report)
	assert.Equal(t, 2, w.MovementPoints)
	assert.Equal(t, game.PhasePlayerTurn, g.Phase)
}

func TestRunTurnCancelledLeavesTurnOpen(t *testing.T) {
	g := aiFirst(t)
	place(t, g, units.TypeWarrior, "player2", 3, 3)
	place(t, g, units.TypeWarrior, "player1", 6, 8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Delay(time.Hour)).RunTurn(ctx, g)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, game.PhaseAITurn, g.Phase)
	assert.Equal(t, 0, g.CurrentPlayerIndex)
}

func TestPacers(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, NoDelay{}.Pause(ctx))
	assert.NoError(t, Delay(time.Millisecond).Pause(ctx))
	assert.NoError(t, Delay(0).Pause(ctx))

	calls := 0
	f := PacerFunc(func(context.Context) error { calls++; return nil })
	require.NoError(t, f.Pause(ctx))
	assert.Equal(t, 1, calls)
}
