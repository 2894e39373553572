package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexfront/internal/game"
	"github.com/talgya/hexfront/internal/units"
	"github.com/talgya/hexfront/internal/world"
)

func smallMap() *world.Map {
	m := world.NewMap(4, 3)
	for r := 0; r < 3; r++ {
		lo, hi := world.RowRange(4, r)
		for q := lo; q < hi; q++ {
			m.Set(&world.Cell{Coord: world.HexCoord{Q: q, R: r}, Terrain: world.TerrainPlains})
		}
	}
	m.Get(world.HexCoord{Q: 2, R: 1}).Terrain = world.TerrainWater
	m.Get(world.HexCoord{Q: -1, R: 2}).Terrain = world.TerrainMountains
	return m
}

func TestMapPlain(t *testing.T) {
	got := Plain().Map(smallMap())
	assert.Equal(t, []string{
		". . . . ",
		" . . ~ . ",
		"^ . . . ",
	}, strings.Split(got, "\n"))
}

func TestGamePlain(t *testing.T) {
	g, err := game.New(game.DefaultConfig())
	require.NoError(t, err)
	g.Start(smallMap())
	_, ok := g.SpawnUnit(units.TypeWarrior, "player1", world.HexCoord{Q: 0, R: 0})
	require.True(t, ok)
	_, ok = g.SpawnUnit(units.TypeArcher, "player2", world.HexCoord{Q: 1, R: 1})
	require.True(t, ok)
	settler, ok := g.SpawnUnit(units.TypeSettler, "player1", world.HexCoord{Q: 3, R: 0})
	require.True(t, ok)
	require.NotNil(t, g.FoundCity(settler.ID))

	got := Plain().Game(g)
	lines := strings.Split(got, "\n")
	assert.Contains(t, lines, "W . . @ ")
	assert.Contains(t, lines, " . a ~ . ")
	assert.Contains(t, got, "Turn 1  player_turn")
	assert.Contains(t, got, "To move: Player")
	assert.Contains(t, got, "~ water")
}

func TestEventsTail(t *testing.T) {
	events := []game.Event{
		{Turn: 1, Category: "turn", Description: "first"},
		{Turn: 2, Category: "combat", Description: "second"},
		{Turn: 3, Category: "city", Description: "third"},
	}
	got := Plain().Events(events, 2)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "second")
	assert.Contains(t, lines[1], "third")
}

func TestStyledRendererKeepsGlyphs(t *testing.T) {
	var b strings.Builder
	got := New(&b).Map(smallMap())
	assert.Contains(t, got, "~")
	assert.Contains(t, got, "^")
}
