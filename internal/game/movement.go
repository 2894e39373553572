package game

import (
	"github.com/talgya/hexfront/internal/units"
	"github.com/talgya/hexfront/internal/world"
)

// MoveResult describes a move attempt. A rejected move leaves the state untouched.
type MoveResult struct {
	UnitID       string         `json:"unit_id"`
	From         world.HexCoord `json:"from"`
	To           world.HexCoord `json:"to"`
	Success      bool           `json:"success"`
	MovementCost int            `json:"movement_cost"`
}

// MoveUnit relocates a unit. The move costs the straight hex distance in
// movement points; terrain cost only shapes MovableCoords.
func (g *Game) MoveUnit(unitID string, to world.HexCoord) MoveResult {
	res := MoveResult{UnitID: unitID, To: to}
	u := g.units[unitID]
	if u == nil {
		return res
	}
	res.From = u.Coord
	if !g.acting() {
		return res
	}

	cell := g.Map.Get(to)
	if cell == nil || !cell.Terrain.Passable() {
		return res
	}
	if cell.UnitID != "" && cell.UnitID != unitID {
		return res
	}
	dist := world.Distance(u.Coord, to)
	if dist > u.MovementPoints {
		return res
	}

	if from := g.Map.Get(u.Coord); from != nil && from.UnitID == unitID {
		from.UnitID = ""
	}
	cell.UnitID = unitID
	u.Coord = to
	u.MovementPoints -= dist

	res.Success = true
	res.MovementCost = dist
	if dist > 0 {
		g.logEvent(CategoryMovement, u.PlayerID, "%s moved from %s to %s.", u.Stats().Name, res.From.Key(), to.Key())
	}
	return res
}

// MovableCoords returns every tile the unit can reach this turn.
func (g *Game) MovableCoords(unitID string) world.CoordSet {
	return world.NewCoordSet(g.MovableCoordList(unitID)...)
}

// MovableCoordList returns the reachable tiles in discovery order. The walk
// is a first-in first-out search that settles a tile the first time it comes
// off the queue, at whatever cost it arrived with; a cheaper path found later
// does not reopen it. Occupied tiles are never entered or crossed.
func (g *Game) MovableCoordList(unitID string) []world.HexCoord {
	u := g.units[unitID]
	if u == nil {
		return nil
	}
	return g.reachable(u)
}

type frontier struct {
	coord world.HexCoord
	cost  float64
}

func (g *Game) reachable(u *units.Unit) []world.HexCoord {
	budget := float64(u.MovementPoints)
	queue := []frontier{{coord: u.Coord}}
	visited := world.NewCoordSet()
	var order []world.HexCoord

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited.Has(cur.coord) {
			continue
		}
		visited.Add(cur.coord)

		if cur.cost > 0 {
			if g.Map.Get(cur.coord).UnitID != "" {
				continue
			}
			order = append(order, cur.coord)
		}
		if cur.cost >= budget {
			continue
		}
		for _, n := range cur.coord.Neighbors() {
			cell := g.Map.Get(n)
			if cell == nil || !cell.Terrain.Passable() {
				continue
			}
			if cost := cur.cost + cell.Terrain.MovementCost(); cost <= budget {
				queue = append(queue, frontier{coord: n, cost: cost})
			}
		}
	}
	return order
}
