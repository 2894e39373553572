package game

import (
	"github.com/talgya/hexfront/internal/cities"
	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/units"
)

// FoundCity turns a settler into a city on its tile. The player's first city
// becomes the capital. It returns nil when the unit is not a settler or the
// tile already holds a city.
func (g *Game) FoundCity(settlerID string) *cities.City {
	if !g.acting() {
		return nil
	}
	u := g.units[settlerID]
	if u == nil || u.Type != units.TypeSettler {
		return nil
	}
	cell := g.Map.Get(u.Coord)
	if cell == nil || cell.CityID != "" {
		return nil
	}

	capital := len(g.PlayerCities(u.PlayerID)) == 0
	c := cities.New(g.names.Next(), u.PlayerID, u.Coord, capital)
	g.cities[c.ID] = c
	g.cityOrder = append(g.cityOrder, c.ID)
	cell.CityID = c.ID
	g.removeUnit(settlerID)
	c.Resources = economy.CityYield(g.Map, c.Coord)

	if capital {
		g.logEvent(CategoryCity, c.PlayerID, "%s was founded as the capital at %s.", c.Name, c.Coord.Key())
	} else {
		g.logEvent(CategoryCity, c.PlayerID, "%s was founded at %s.", c.Name, c.Coord.Key())
	}
	return c
}

// AddToProductionQueue appends a build of the given unit type to a city's queue.
func (g *Game) AddToProductionQueue(cityID string, t units.UnitType) (*cities.ProductionQueueItem, bool) {
	if !g.acting() {
		return nil, false
	}
	c := g.cities[cityID]
	if c == nil {
		return nil, false
	}
	item, ok := cities.LookupItem(t)
	if !ok {
		return nil, false
	}
	return c.Enqueue(item), true
}

// RemoveFromProductionQueue drops a queued build; progress on it is lost.
func (g *Game) RemoveFromProductionQueue(cityID, itemID string) bool {
	if !g.acting() {
		return false
	}
	c := g.cities[cityID]
	if c == nil {
		return false
	}
	return c.Dequeue(itemID)
}

// advanceCities runs the end-of-turn economy for one player's cities:
// production, then growth, then a fresh resource yield.
func (g *Game) advanceCities(playerID string) {
	for _, c := range g.PlayerCities(playerID) {
		if done := c.AdvanceProduction(); done != nil {
			g.deliver(c, done.Item.Type)
		}
		if c.AdvanceGrowth() {
			g.logEvent(CategoryCity, c.PlayerID, "%s grew to population %d.", c.Name, c.Population)
		}
		c.Resources = economy.CityYield(g.Map, c.Coord)
	}
}

// deliver places a finished unit on the first free passable neighbor of the
// city. With no room the build is lost.
func (g *Game) deliver(c *cities.City, t units.UnitType) {
	for _, n := range c.Coord.Neighbors() {
		cell := g.Map.Get(n)
		if cell == nil || !cell.Terrain.Passable() || cell.UnitID != "" {
			continue
		}
		if u, ok := g.SpawnUnit(t, c.PlayerID, n); ok {
			g.logEvent(CategoryProduction, c.PlayerID, "%s completed a %s at %s.", c.Name, u.Stats().Name, n.Key())
			return
		}
	}
	g.logEvent(CategoryProduction, c.PlayerID, "%s completed a %s but had no room to place it.", c.Name, t.Stats().Name)
}
