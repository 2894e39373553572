package game

// EndTurn closes the current player's turn: their cities produce and grow,
// play passes to the next player, and every unit is refreshed. A full round
// increments the turn counter. It does nothing outside an active turn.
func (g *Game) EndTurn() bool {
	if !g.acting() {
		return false
	}

	outgoing := g.Players[g.CurrentPlayerIndex]
	g.advanceCities(outgoing.ID)

	g.CurrentPlayerIndex = (g.CurrentPlayerIndex + 1) % len(g.Players)
	for _, id := range g.unitOrder {
		g.units[id].ResetTurn()
	}
	if g.CurrentPlayerIndex == 0 {
		g.Turn++
	}
	g.SelectedUnitID = ""
	g.SelectedCityID = ""

	next := g.Players[g.CurrentPlayerIndex]
	g.Phase = phaseFor(next)
	g.logEvent(CategoryTurn, next.ID, "Turn %d: %s to move.", g.Turn, next.Name)
	return true
}
