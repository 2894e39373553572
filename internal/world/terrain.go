package world

import (
	_ "embed"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Terrain types for hex tiles.
type Terrain uint8

const (
	TerrainPlains    Terrain = iota // Open ground, the default fill
	TerrainHills                    // Slow, defensible, productive
	TerrainMountains                // Impassable
	TerrainWater                    // Passable shallows, food only
	TerrainForest                   // Slow, some cover
	TerrainDesert                   // Exposed, barren
)

// AllTerrains lists every terrain kind in declaration order.
var AllTerrains = []Terrain{
	TerrainPlains, TerrainHills, TerrainMountains,
	TerrainWater, TerrainForest, TerrainDesert,
}

var terrainNames = [...]string{
	TerrainPlains:    "plains",
	TerrainHills:     "hills",
	TerrainMountains: "mountains",
	TerrainWater:     "water",
	TerrainForest:    "forest",
	TerrainDesert:    "desert",
}

// TerrainProps holds the static rule values for one terrain kind.
type TerrainProps struct {
	MovementCost float64 `yaml:"movement_cost" json:"movement_cost"` // +Inf when impassable
	DefenseBonus float64 `yaml:"defense_bonus" json:"defense_bonus"` // Fraction added to defender power
	Food         int     `yaml:"food" json:"food"`
	Production   int     `yaml:"production" json:"production"`
	Passable     bool    `yaml:"passable" json:"passable"`
	Color        string  `yaml:"color" json:"color"`
	Glyph        string  `yaml:"glyph" json:"glyph"`
}

//go:embed terrain.yaml
var terrainYAML []byte

var terrainTable = mustLoadTerrain(terrainYAML)

func mustLoadTerrain(data []byte) [len(terrainNames)]TerrainProps {
	table, err := loadTerrain(data)
	if err != nil {
		panic(err)
	}
	return table
}

func loadTerrain(data []byte) ([len(terrainNames)]TerrainProps, error) {
	var table [len(terrainNames)]TerrainProps
	var raw map[string]TerrainProps
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return table, fmt.Errorf("decode terrain table: %w", err)
	}
	for _, t := range AllTerrains {
		props, ok := raw[t.String()]
		if !ok {
			return table, fmt.Errorf("terrain table: missing %q", t.String())
		}
		if !props.Passable {
			props.MovementCost = math.Inf(1)
		}
		table[t] = props
	}
	return table, nil
}

// Props returns the rule values for the terrain.
func (t Terrain) Props() TerrainProps {
	if int(t) >= len(terrainTable) {
		return TerrainProps{MovementCost: math.Inf(1)}
	}
	return terrainTable[t]
}

// MovementCost returns the movement points needed to enter a hex of this terrain.
func (t Terrain) MovementCost() float64 { return t.Props().MovementCost }

// DefenseBonus returns the fractional defense modifier for a defender on this terrain.
func (t Terrain) DefenseBonus() float64 { return t.Props().DefenseBonus }

// Passable reports whether units may enter this terrain.
func (t Terrain) Passable() bool { return t.Props().Passable }

// String returns the lowercase terrain name.
func (t Terrain) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return "unknown"
}

// ParseTerrain resolves a terrain name.
func ParseTerrain(name string) (Terrain, error) {
	for _, t := range AllTerrains {
		if terrainNames[t] == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown terrain %q", name)
}

// MarshalText encodes the terrain as its name.
func (t Terrain) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a terrain name.
func (t *Terrain) UnmarshalText(b []byte) error {
	parsed, err := ParseTerrain(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
