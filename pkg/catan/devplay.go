package catan

// spendDevCard enforces the shared play rules: one dev card per turn,
// never on the turn it was purchased, never a victory-point card. On
// success the card is marked played.
func spendDevCard(gs *GameState, p *PlayerState, cardType DevCardType) (*DevCard, error) {
	if cardType == CardVictoryPoint {
		return nil, ruleErr(CodeInvalidPayload, "victory point cards are never played")
	}
	if p.HasPlayedDevCardOnTurn(gs.TurnNumber) {
		return nil, ruleErr(CodeWrongTurnPhase, "you have already played a development card this turn")
	}
	idx := p.playableCard(cardType, gs.TurnNumber)
	if idx == -1 {
		return nil, ruleErr(CodeCannotAfford, "no playable %s card (cards cannot be played on the turn they were bought)", cardType)
	}
	p.DevCards[idx].Played = true
	p.LastDevCardPlayTurn = gs.TurnNumber
	return &p.DevCards[idx], nil
}

// PlayKnight plays a knight: the robber sequence starts at the move
// step (no discard barrier) and largest army is recomputed. Legal in
// pre_roll as well as main; a pre-roll knight returns to pre_roll after
// the steal so the player still rolls.
func PlayKnight(gs *GameState, playerID string) ([]Event, error) {
	if gs.Phase != PhasePlaying {
		return nil, ruleErr(CodeWrongPhase, "knights are played during the playing phase")
	}
	if gs.TurnPhase != TurnPreRoll && gs.TurnPhase != TurnMain {
		return nil, ruleErr(CodeWrongTurnPhase, "knights cannot be played during %s", gs.TurnPhase)
	}
	p, err := gs.requireCurrent(playerID)
	if err != nil {
		return nil, err
	}
	card, err := spendDevCard(gs, p, CardKnight)
	if err != nil {
		return nil, err
	}

	p.KnightsPlayed++
	gs.TurnPhase = TurnRobberMove

	events := []Event{broadcast(EventDevCardPlayed, map[string]any{
		"player_id": playerID,
		"card_type": card.Type,
	})}
	events = append(events, recomputeLargestArmy(gs)...)
	events = append(events, gs.checkWinner()...)
	return events, nil
}

// PlayRoadBuilding enters the road-building phase: up to two free roads
// placed through the normal build operation.
func PlayRoadBuilding(gs *GameState, playerID string) ([]Event, error) {
	if err := gs.requirePlaying(TurnMain); err != nil {
		return nil, err
	}
	p, err := gs.requireCurrent(playerID)
	if err != nil {
		return nil, err
	}
	card, err := spendDevCard(gs, p, CardRoadBuilding)
	if err != nil {
		return nil, err
	}

	gs.TurnPhase = TurnRoadBuilding
	gs.RoadBuildingRoadsLeft = 2

	return []Event{broadcast(EventDevCardPlayed, map[string]any{
		"player_id": playerID,
		"card_type": card.Type,
	})}, nil
}

// EndRoadBuilding returns to the main phase with fewer than two roads
// placed. Allowed only when no legal edge remains or the player has no
// road pieces left.
func EndRoadBuilding(gs *GameState, playerID string) ([]Event, error) {
	if err := gs.requirePlaying(TurnRoadBuilding); err != nil {
		return nil, err
	}
	p, err := gs.requireCurrent(playerID)
	if err != nil {
		return nil, err
	}
	if len(p.Roads) < MaxRoads && hasLegalRoadPlacement(gs, p) {
		return nil, ruleErr(CodeIllegalPlacement, "you still have a legal road placement")
	}
	gs.TurnPhase = TurnMain
	gs.RoadBuildingRoadsLeft = 0
	return nil, nil
}

// PlayYearOfPlenty takes two resources of the player's choice from the
// bank. Both must be in supply.
func PlayYearOfPlenty(gs *GameState, playerID string, first, second Resource) ([]Event, error) {
	if err := gs.requirePlaying(TurnMain); err != nil {
		return nil, err
	}
	p, err := gs.requireCurrent(playerID)
	if err != nil {
		return nil, err
	}
	if !ValidResource(first) || !ValidResource(second) {
		return nil, ruleErr(CodeInvalidPayload, "year of plenty requires two valid resources")
	}
	var want ResourceCount
	want.Add(first, 1)
	want.Add(second, 1)
	if !gs.Bank.Covers(want) {
		return nil, ruleErr(CodeBankShortage, "the bank cannot supply %s and %s", first, second)
	}
	card, err := spendDevCard(gs, p, CardYearOfPlenty)
	if err != nil {
		return nil, err
	}

	gs.Bank = gs.Bank.Minus(want)
	p.Resources = p.Resources.Plus(want)

	return []Event{
		broadcast(EventDevCardPlayed, map[string]any{
			"player_id": playerID,
			"card_type": card.Type,
			"resources": []Resource{first, second},
		}),
	}, nil
}

// PlayMonopoly names a resource; every other player surrenders all of
// their cards of that type to the active player.
func PlayMonopoly(gs *GameState, playerID string, resource Resource) ([]Event, error) {
	if err := gs.requirePlaying(TurnMain); err != nil {
		return nil, err
	}
	p, err := gs.requireCurrent(playerID)
	if err != nil {
		return nil, err
	}
	if !ValidResource(resource) {
		return nil, ruleErr(CodeInvalidPayload, "monopoly requires a valid resource")
	}
	card, err := spendDevCard(gs, p, CardMonopoly)
	if err != nil {
		return nil, err
	}

	collected := 0
	taken := map[string]int{}
	for _, other := range gs.Players {
		if other.ID == playerID {
			continue
		}
		n := other.Resources.Get(resource)
		if n == 0 {
			continue
		}
		other.Resources.Set(resource, 0)
		p.Resources.Add(resource, n)
		collected += n
		taken[other.ID] = n
	}

	return []Event{broadcast(EventDevCardPlayed, map[string]any{
		"player_id": playerID,
		"card_type": card.Type,
		"resource":  resource,
		"collected": collected,
		"taken":     taken,
	})}, nil
}

// EndTurn passes play to the next player in turn order, incrementing
// the turn number when the order wraps.
func EndTurn(gs *GameState, playerID string) ([]Event, error) {
	if err := gs.requirePlaying(TurnMain); err != nil {
		return nil, err
	}
	if _, err := gs.requireCurrent(playerID); err != nil {
		return nil, err
	}

	var events []Event
	// An open trade does not survive the proposer's turn.
	if gs.ActiveTrade != nil {
		events = append(events, broadcast(EventTradeCancelled, map[string]any{
			"trade_id": gs.ActiveTrade.ID,
			"reason":   "turn_ended",
		}))
		gs.ActiveTrade = nil
	}

	gs.CurrentPlayerIndex = (gs.CurrentPlayerIndex + 1) % len(gs.TurnOrder)
	if gs.CurrentPlayerIndex == 0 {
		gs.TurnNumber++
	}
	gs.TurnPhase = TurnPreRoll
	gs.LastDiceRoll = nil

	events = append(events, broadcast(EventTurnChanged, map[string]any{
		"player_id":   gs.TurnOrder[gs.CurrentPlayerIndex],
		"turn_number": gs.TurnNumber,
	}))
	// A player holding hidden victory-point cards wins at the start of
	// their own turn.
	events = append(events, gs.checkWinner()...)
	return events, nil
}
