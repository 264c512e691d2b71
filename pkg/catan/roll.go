package catan

// RollDice rolls the active player's dice. A non-seven distributes
// production; a seven starts the robber sequence, beginning with the
// discard barrier if any hand exceeds seven cards.
func RollDice(gs *GameState, playerID string, rng RNG) ([]Event, error) {
	if err := gs.requirePlaying(TurnPreRoll); err != nil {
		return nil, err
	}
	if _, err := gs.requireCurrent(playerID); err != nil {
		return nil, err
	}

	roll := DiceRoll{Die1: rollDie(rng), Die2: rollDie(rng)}
	gs.LastDiceRoll = &roll

	events := []Event{broadcast(EventDiceRolled, map[string]any{
		"player_id": playerID,
		"die1":      roll.Die1,
		"die2":      roll.Die2,
		"total":     roll.Sum(),
	})}

	if roll.Sum() == 7 {
		events = append(events, enterRobberSequence(gs)...)
		return events, nil
	}

	distributions := distributeProduction(gs, roll.Sum())
	events = append(events, broadcast(EventResourcesDistributed, map[string]any{
		"roll":          roll.Sum(),
		"distributions": distributions,
	}))
	gs.TurnPhase = TurnMain
	return events, nil
}

// distributeProduction pays out the roll. Bank scarcity rule: when a
// resource's total owed exceeds the bank's remaining supply and more
// than one player is owed it, nobody receives that resource this roll;
// a sole recipient is paid as much as the bank holds.
func distributeProduction(gs *GameState, roll int) map[string]ResourceCount {
	// owed[resource][playerID] before applying bank limits.
	owed := map[Resource]map[string]int{}
	for i := range gs.Board.Hexes {
		tile := &gs.Board.Hexes[i]
		if tile.NumberToken == nil || *tile.NumberToken != roll {
			continue
		}
		if tile.ID == gs.Board.RobberHex {
			continue
		}
		res, ok := tile.Terrain.Produces()
		if !ok {
			continue
		}
		for _, bl := range gs.Board.BuildingsAdjacentToHex(tile.ID) {
			n := 1
			if bl.Type == BuildingCity {
				n = 2
			}
			if owed[res] == nil {
				owed[res] = map[string]int{}
			}
			owed[res][bl.PlayerID] += n
		}
	}

	out := map[string]ResourceCount{}
	for res, byPlayer := range owed {
		total := 0
		for _, n := range byPlayer {
			total += n
		}
		supply := gs.Bank.Get(res)
		if total > supply {
			if len(byPlayer) > 1 {
				continue // nobody gets this resource this roll
			}
			total = supply // sole recipient takes what remains
			for id := range byPlayer {
				byPlayer[id] = supply
			}
		}
		if total == 0 {
			continue
		}
		for id, n := range byPlayer {
			p := gs.Player(id)
			p.Resources.Add(res, n)
			rc := out[id]
			rc.Add(res, n)
			out[id] = rc
		}
		gs.Bank.Add(res, -total)
	}
	return out
}

// enterRobberSequence starts the seven/knight robber flow at the
// appropriate step: discard barrier if any player holds more than
// seven cards, otherwise straight to moving the robber.
func enterRobberSequence(gs *GameState) []Event {
	events := []Event{broadcast(EventRobberActivated, nil)}

	var pending []PendingDiscard
	for _, p := range gs.Players {
		if n := p.Resources.Total(); n > 7 {
			pending = append(pending, PendingDiscard{PlayerID: p.ID, Count: n / 2})
		}
	}
	if len(pending) > 0 {
		gs.PendingDiscards = pending
		gs.TurnPhase = TurnDiscard
		events = append(events, broadcast(EventDiscardRequired, map[string]any{
			"pending": pending,
		}))
		return events
	}
	gs.TurnPhase = TurnRobberMove
	return events
}
