// Package economy computes terrain-driven city yields.
package economy

import (
	"github.com/talgya/hexfront/internal/world"
)

// WorkRadius is how far from its centre a city draws yield.
const WorkRadius = 2

// Resources is a per-turn yield.
type Resources struct {
	Food       int `json:"food"`
	Production int `json:"production"`
	Gold       int `json:"gold"`
}

// Add returns the component-wise sum.
func (r Resources) Add(o Resources) Resources {
	return Resources{
		Food:       r.Food + o.Food,
		Production: r.Production + o.Production,
		Gold:       r.Gold + o.Gold,
	}
}

// BaseResources is what every city yields before terrain is counted.
func BaseResources() Resources {
	return Resources{Food: 2, Production: 2, Gold: 1}
}

// TileYield returns the yield a single terrain contributes.
func TileYield(t world.Terrain) Resources {
	p := t.Props()
	return Resources{Food: p.Food, Production: p.Production}
}

// CityYield sums the base yield and every unclaimed cell within WorkRadius of
// center. A cell carrying a city id is claimed, including the city's own tile.
// Population does not change the result.
func CityYield(m *world.Map, center world.HexCoord) Resources {
	total := BaseResources()
	for _, c := range world.InRange(center, WorkRadius) {
		cell := m.Get(c)
		if cell == nil || cell.CityID != "" {
			continue
		}
		total = total.Add(TileYield(cell.Terrain))
	}
	return total
}
