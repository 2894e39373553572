package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexfront/internal/world"
)

func TestStatsTable(t *testing.T) {
	tests := []struct {
		typ                              UnitType
		maxHP, atk, def, move, rng, cost int
	}{
		{TypeWarrior, 100, 25, 20, 2, 0, 40},
		{TypeArcher, 70, 20, 10, 2, 2, 50},
		{TypeCavalry, 90, 22, 15, 4, 0, 60},
		{TypeSettler, 50, 0, 5, 2, 0, 80},
		{TypeWorker, 50, 0, 5, 2, 0, 35},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			s := tt.typ.Stats()
			assert.Equal(t, tt.maxHP, s.MaxHealth)
			assert.Equal(t, tt.atk, s.Attack)
			assert.Equal(t, tt.def, s.Defense)
			assert.Equal(t, tt.move, s.Movement)
			assert.Equal(t, tt.rng, s.Range)
			assert.Equal(t, tt.cost, s.Cost)
			assert.NotEmpty(t, s.Symbol)
		})
	}
}

func TestAttackRange(t *testing.T) {
	assert.Equal(t, 1, TypeWarrior.Stats().AttackRange())
	assert.Equal(t, 2, TypeArcher.Stats().AttackRange())
}

func TestNewUnitAndReset(t *testing.T) {
	u := New(TypeCavalry, "player1", world.HexCoord{Q: 3, R: 4})
	require.NotEmpty(t, u.ID)
	assert.Equal(t, 90, u.Health)
	assert.Equal(t, 4, u.MovementPoints)
	assert.InDelta(t, 1.0, u.HealthRatio(), 1e-9)

	u.MovementPoints = 0
	u.HasAttacked = true
	u.IsFortified = true
	u.Health = 45
	u.ResetTurn()

	assert.Equal(t, 4, u.MovementPoints)
	assert.False(t, u.HasAttacked)
	assert.False(t, u.IsFortified)
	assert.Equal(t, 45, u.Health, "reset does not heal")
	assert.InDelta(t, 0.5, u.HealthRatio(), 1e-9)

	other := New(TypeCavalry, "player1", world.HexCoord{})
	assert.NotEqual(t, u.ID, other.ID)
}

func TestParseType(t *testing.T) {
	got, err := ParseType("archer")
	require.NoError(t, err)
	assert.Equal(t, TypeArcher, got)

	_, err = ParseType("catapult")
	assert.Error(t, err)
	assert.False(t, UnitType("catapult").Valid())
}

func TestLoadStatsRejectsBadTable(t *testing.T) {
	_, err := loadStats([]byte("warrior:\n  max_health: 100\n"))
	assert.Error(t, err, "missing archetypes")

	_, err = loadStats([]byte("{{"))
	assert.Error(t, err)
}
