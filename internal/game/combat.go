package game

import (
	"math"

	"github.com/talgya/hexfront/internal/units"
	"github.com/talgya/hexfront/internal/world"
)

// baseDamage is the damage dealt when attack and defense power are equal.
const baseDamage = 30.0

// CombatResult reports one resolved attack. Damage is capped at the health
// the victim had, so a kill reports what was actually lost.
type CombatResult struct {
	AttackerID     string `json:"attacker_id"`
	DefenderID     string `json:"defender_id"`
	AttackerDamage int    `json:"attacker_damage"`
	DefenderDamage int    `json:"defender_damage"`
	AttackerKilled bool   `json:"attacker_killed"`
	DefenderKilled bool   `json:"defender_killed"`
}

// ResolveDamage computes the raw damage of one exchange. Power scales with
// remaining health; the defender's terrain bonus multiplies its defense, and
// retaliation is half of the reversed ratio.
func ResolveDamage(attacker, defender *units.Unit, terrainBonus float64) (toDefender, toAttacker int) {
	attackPower := float64(attacker.Stats().Attack) * attacker.HealthRatio()
	defensePower := float64(defender.Stats().Defense) * (1 + terrainBonus) * defender.HealthRatio()

	if defensePower > 0 {
		toDefender = roundHalfUp(baseDamage * (attackPower / defensePower))
	} else {
		toDefender = defender.Health
	}
	if attackPower > 0 {
		toAttacker = roundHalfUp(baseDamage * (defensePower / attackPower) * 0.5)
	} else {
		toAttacker = attacker.Health
	}
	return toDefender, toAttacker
}

// roundHalfUp rounds to the nearest integer with halves going up.
func roundHalfUp(x float64) int {
	r := math.Floor(x)
	if x-r >= 0.5 {
		r++
	}
	return int(r)
}

// AttackUnit resolves an attack. It returns nil, changing nothing, when the
// attack is not allowed: unknown units, same owner, attacker already spent
// its attack, or defender out of range.
func (g *Game) AttackUnit(attackerID, defenderID string) *CombatResult {
	if !g.acting() {
		return nil
	}
	attacker, defender := g.units[attackerID], g.units[defenderID]
	if attacker == nil || defender == nil || attacker == defender {
		return nil
	}
	if attacker.PlayerID == defender.PlayerID || attacker.HasAttacked {
		return nil
	}
	if world.Distance(attacker.Coord, defender.Coord) > attacker.Stats().AttackRange() {
		return nil
	}

	var bonus float64
	if cell := g.Map.Get(defender.Coord); cell != nil {
		bonus = cell.Terrain.DefenseBonus()
	}
	toDefender, toAttacker := ResolveDamage(attacker, defender, bonus)

	res := &CombatResult{
		AttackerID:     attackerID,
		DefenderID:     defenderID,
		AttackerDamage: min(toAttacker, attacker.Health),
		DefenderDamage: min(toDefender, defender.Health),
	}
	attackerName, defenderName := attacker.Stats().Name, defender.Stats().Name

	if defender.Health-toDefender <= 0 {
		res.DefenderKilled = true
		g.removeUnit(defenderID)
	} else {
		defender.Health -= toDefender
	}
	if attacker.Health-toAttacker <= 0 {
		res.AttackerKilled = true
		g.removeUnit(attackerID)
	} else {
		attacker.Health -= toAttacker
		attacker.HasAttacked = true
		attacker.MovementPoints = 0
	}
	g.SelectedUnitID = ""

	g.logEvent(CategoryCombat, attacker.PlayerID, "%s attacked %s: dealt %d, took %d.",
		attackerName, defenderName, res.DefenderDamage, res.AttackerDamage)
	if res.DefenderKilled {
		g.logEvent(CategoryCombat, defender.PlayerID, "%s was destroyed.", defenderName)
	}
	if res.AttackerKilled {
		g.logEvent(CategoryCombat, attacker.PlayerID, "%s was destroyed.", attackerName)
	}

	g.checkGameOver()
	return res
}

// AttackableCoords returns the tiles of enemy units within the unit's attack
// range. A unit that already attacked this turn has none.
func (g *Game) AttackableCoords(unitID string) world.CoordSet {
	set := world.NewCoordSet()
	u := g.units[unitID]
	if u == nil || u.HasAttacked {
		return set
	}
	reach := u.Stats().AttackRange()
	for _, id := range g.unitOrder {
		other := g.units[id]
		if other.PlayerID != u.PlayerID && world.Distance(u.Coord, other.Coord) <= reach {
			set.Add(other.Coord)
		}
	}
	return set
}

// checkGameOver ends the game when a player has no units left. The first
// such player in turn order loses.
func (g *Game) checkGameOver() bool {
	for _, p := range g.Players {
		if len(g.PlayerUnits(p.ID)) > 0 {
			continue
		}
		for _, other := range g.Players {
			if other.ID != p.ID {
				g.Winner = other.ID
				break
			}
		}
		g.Phase = PhaseGameOver
		winner := g.Player(g.Winner)
		g.logEvent(CategoryGameOver, g.Winner, "%s has no units left. %s wins.", p.Name, winner.Name)
		return true
	}
	return false
}
