// Package units provides unit archetypes, their stat table, and the unit data model.
package units

import (
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/talgya/hexfront/internal/world"
)

// UnitType names a unit archetype.
type UnitType string

const (
	TypeWarrior UnitType = "warrior" // Line infantry
	TypeArcher  UnitType = "archer"  // Ranged, fragile
	TypeCavalry UnitType = "cavalry" // Fast melee
	TypeSettler UnitType = "settler" // Founds cities, cannot fight
	TypeWorker  UnitType = "worker"  // Non-combatant
)

// AllTypes lists the archetypes in production-menu order.
var AllTypes = []UnitType{TypeWarrior, TypeArcher, TypeCavalry, TypeSettler, TypeWorker}

// Stats is the template shared by every unit of one archetype.
type Stats struct {
	Name      string `yaml:"name" json:"name"`
	MaxHealth int    `yaml:"max_health" json:"max_health"`
	Attack    int    `yaml:"attack" json:"attack"`
	Defense   int    `yaml:"defense" json:"defense"`
	Movement  int    `yaml:"movement" json:"movement"`
	Range     int    `yaml:"range" json:"range"` // 0 = melee
	Sight     int    `yaml:"sight" json:"sight"` // Not read by any rule yet
	Cost      int    `yaml:"cost" json:"cost"`   // Production to build
	Icon      string `yaml:"icon" json:"icon"`
	Symbol    string `yaml:"symbol" json:"symbol"` // One-letter map glyph
}

// AttackRange returns the distance this archetype can strike at. Melee units
// reach adjacent hexes.
func (s Stats) AttackRange() int {
	return max(s.Range, 1)
}

//go:embed units.yaml
var unitsYAML []byte

var statsTable = mustLoadStats(unitsYAML)

func mustLoadStats(data []byte) map[UnitType]Stats {
	table, err := loadStats(data)
	if err != nil {
		panic(err)
	}
	return table
}

func loadStats(data []byte) (map[UnitType]Stats, error) {
	var raw map[string]Stats
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode unit table: %w", err)
	}
	table := make(map[UnitType]Stats, len(AllTypes))
	for _, t := range AllTypes {
		s, ok := raw[string(t)]
		if !ok {
			return nil, fmt.Errorf("unit table: missing %q", t)
		}
		if s.MaxHealth <= 0 {
			return nil, fmt.Errorf("unit table: %q has max_health %d", t, s.MaxHealth)
		}
		table[t] = s
	}
	return table, nil
}

// Valid reports whether the type is a known archetype.
func (t UnitType) Valid() bool {
	_, ok := statsTable[t]
	return ok
}

// Stats returns the archetype's template. Unknown types return the zero Stats.
func (t UnitType) Stats() Stats {
	return statsTable[t]
}

// ParseType resolves an archetype name.
func ParseType(name string) (UnitType, error) {
	t := UnitType(name)
	if !t.Valid() {
		return "", fmt.Errorf("unknown unit type %q", name)
	}
	return t, nil
}

// Unit is a single piece on the board.
type Unit struct {
	ID       string         `json:"id"`
	Type     UnitType       `json:"type"`
	PlayerID string         `json:"player_id"`
	Coord    world.HexCoord `json:"coord"`

	Health         int  `json:"health"`
	MovementPoints int  `json:"movement_points"`
	HasAttacked    bool `json:"has_attacked"`
	IsFortified    bool `json:"is_fortified"`
}

// New creates a full-health unit with a fresh id and a full movement budget.
func New(t UnitType, playerID string, coord world.HexCoord) *Unit {
	stats := t.Stats()
	return &Unit{
		ID:             uuid.NewString(),
		Type:           t,
		PlayerID:       playerID,
		Coord:          coord,
		Health:         stats.MaxHealth,
		MovementPoints: stats.Movement,
	}
}

// Stats returns the unit's archetype template.
func (u *Unit) Stats() Stats {
	return u.Type.Stats()
}

// HealthRatio returns current health as a fraction of maximum.
func (u *Unit) HealthRatio() float64 {
	maxHP := u.Stats().MaxHealth
	if maxHP <= 0 {
		return 0
	}
	return float64(u.Health) / float64(maxHP)
}

// ResetTurn restores movement and clears the per-turn flags.
func (u *Unit) ResetTurn() {
	u.MovementPoints = u.Stats().Movement
	u.HasAttacked = false
	u.IsFortified = false
}

// Alive reports whether the unit still has health left.
func (u *Unit) Alive() bool {
	return u.Health > 0
}
