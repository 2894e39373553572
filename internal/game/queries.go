package game

import (
	"github.com/talgya/hexfront/internal/cities"
	"github.com/talgya/hexfront/internal/units"
	"github.com/talgya/hexfront/internal/world"
)

// CurrentPlayer returns the player whose turn it is.
func (g *Game) CurrentPlayer() (Player, bool) {
	if g.CurrentPlayerIndex < 0 || g.CurrentPlayerIndex >= len(g.Players) {
		return Player{}, false
	}
	return g.Players[g.CurrentPlayerIndex], true
}

// Player looks a player up by id.
func (g *Game) Player(id string) *Player {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return &g.Players[i]
		}
	}
	return nil
}

// Unit looks a unit up by id.
func (g *Game) Unit(id string) *units.Unit {
	return g.units[id]
}

// Units returns every unit in creation order.
func (g *Game) Units() []*units.Unit {
	out := make([]*units.Unit, 0, len(g.unitOrder))
	for _, id := range g.unitOrder {
		out = append(out, g.units[id])
	}
	return out
}

// PlayerUnits returns the player's units in creation order.
func (g *Game) PlayerUnits(playerID string) []*units.Unit {
	var out []*units.Unit
	for _, id := range g.unitOrder {
		if u := g.units[id]; u.PlayerID == playerID {
			out = append(out, u)
		}
	}
	return out
}

// UnitAt returns the unit standing on the coordinate, or nil.
func (g *Game) UnitAt(coord world.HexCoord) *units.Unit {
	cell := g.Map.Get(coord)
	if cell == nil || cell.UnitID == "" {
		return nil
	}
	return g.units[cell.UnitID]
}

// City looks a city up by id.
func (g *Game) City(id string) *cities.City {
	return g.cities[id]
}

// Cities returns every city in founding order.
func (g *Game) Cities() []*cities.City {
	out := make([]*cities.City, 0, len(g.cityOrder))
	for _, id := range g.cityOrder {
		out = append(out, g.cities[id])
	}
	return out
}

// PlayerCities returns the player's cities in founding order.
func (g *Game) PlayerCities(playerID string) []*cities.City {
	var out []*cities.City
	for _, id := range g.cityOrder {
		if c := g.cities[id]; c.PlayerID == playerID {
			out = append(out, c)
		}
	}
	return out
}

// CityAt returns the city founded on the coordinate, or nil.
func (g *Game) CityAt(coord world.HexCoord) *cities.City {
	cell := g.Map.Get(coord)
	if cell == nil || cell.CityID == "" {
		return nil
	}
	return g.cities[cell.CityID]
}
