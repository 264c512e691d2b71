package catan

// DiscardResources satisfies one entry of the discard barrier. The
// player chooses which cards to give up; the count must be exactly the
// required half (rounded down). Players may discard in any order, and
// the robber cannot move until every entry is satisfied.
func DiscardResources(gs *GameState, playerID string, discard ResourceCount) ([]Event, error) {
	if err := gs.requirePlaying(TurnDiscard); err != nil {
		return nil, err
	}
	p := gs.Player(playerID)
	if p == nil {
		return nil, ruleErr(CodeNotInGame, "player %s is not in this game", playerID)
	}

	idx := -1
	for i, pd := range gs.PendingDiscards {
		if pd.PlayerID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ruleErr(CodeWrongTurnPhase, "you have nothing to discard")
	}
	required := gs.PendingDiscards[idx].Count
	if !discard.NonNegative() {
		return nil, ruleErr(CodeInvalidPayload, "discard amounts must be non-negative")
	}
	if discard.Total() != required {
		return nil, ruleErr(CodeInvalidPayload, "you must discard exactly %d cards, got %d", required, discard.Total())
	}
	if !p.Resources.Covers(discard) {
		return nil, ruleErr(CodeCannotAfford, "you do not hold the cards you are trying to discard")
	}

	p.Resources = p.Resources.Minus(discard)
	gs.Bank = gs.Bank.Plus(discard)
	gs.PendingDiscards = append(gs.PendingDiscards[:idx], gs.PendingDiscards[idx+1:]...)

	events := []Event{
		broadcast(EventPlayerDiscarded, map[string]any{
			"player_id": playerID,
			"count":     required,
			"remaining": len(gs.PendingDiscards),
		}),
		private(EventPlayerDiscarded, map[string]any{
			"player_id": playerID,
			"discarded": discard,
		}, playerID),
	}

	if len(gs.PendingDiscards) == 0 {
		gs.TurnPhase = TurnRobberMove
	}
	return events, nil
}

// MoveRobber relocates the robber to any land tile other than its
// current one. If the target tile has no stealable opponents the steal
// step is skipped.
func MoveRobber(gs *GameState, playerID, hexID string) ([]Event, error) {
	if err := gs.requirePlaying(TurnRobberMove); err != nil {
		return nil, err
	}
	if _, err := gs.requireCurrent(playerID); err != nil {
		return nil, err
	}
	tile := gs.Board.HexByID(hexID)
	if tile == nil {
		return nil, ruleErr(CodeInvalidID, "hex %s is not on the board", hexID)
	}
	if hexID == gs.Board.RobberHex {
		return nil, ruleErr(CodeIllegalPlacement, "the robber is already on %s", hexID)
	}

	gs.Board.RobberHex = hexID
	events := []Event{broadcast(EventRobberMoved, map[string]any{
		"player_id": playerID,
		"hex_id":    hexID,
	})}

	if len(stealTargets(gs, playerID)) == 0 {
		events = append(events, afterRobber(gs)...)
		return events, nil
	}
	gs.TurnPhase = TurnRobberSteal
	return events, nil
}

// stealTargets returns the IDs of players other than the thief with a
// building adjacent to the robber hex.
func stealTargets(gs *GameState, thiefID string) []string {
	set := map[string]bool{}
	for _, bl := range gs.Board.BuildingsAdjacentToHex(gs.Board.RobberHex) {
		if bl.PlayerID != thiefID {
			set[bl.PlayerID] = true
		}
	}
	var out []string
	for _, p := range gs.Players {
		if set[p.ID] {
			out = append(out, p.ID)
		}
	}
	return out
}

// StealResource takes one uniformly random card from the chosen victim.
// The stolen type is revealed only to thief and victim; everyone else
// sees that a steal happened. A victim with an empty hand yields
// nothing but still completes the robber sequence.
func StealResource(gs *GameState, playerID, victimID string, rng RNG) ([]Event, error) {
	if err := gs.requirePlaying(TurnRobberSteal); err != nil {
		return nil, err
	}
	if _, err := gs.requireCurrent(playerID); err != nil {
		return nil, err
	}
	victim := gs.Player(victimID)
	if victim == nil {
		return nil, ruleErr(CodeNotInGame, "player %s is not in this game", victimID)
	}
	eligible := false
	for _, id := range stealTargets(gs, playerID) {
		if id == victimID {
			eligible = true
			break
		}
	}
	if !eligible {
		return nil, ruleErr(CodeIllegalPlacement, "player %s has no building on the robber hex", victimID)
	}

	thief := gs.Player(playerID)
	events := []Event{broadcast(EventRobberSteal, map[string]any{
		"thief_id":  playerID,
		"victim_id": victimID,
		"stolen":    victim.Resources.Total() > 0,
	})}

	if total := victim.Resources.Total(); total > 0 {
		// Multiset-weighted uniform pick from the victim's hand.
		pick := rng.Intn(total)
		for _, res := range AllResources() {
			n := victim.Resources.Get(res)
			if pick < n {
				victim.Resources.Add(res, -1)
				thief.Resources.Add(res, 1)
				events = append(events, private(EventRobberSteal, map[string]any{
					"thief_id":  playerID,
					"victim_id": victimID,
					"resource":  res,
				}, playerID, victimID))
				break
			}
			pick -= n
		}
	}

	events = append(events, afterRobber(gs)...)
	return events, nil
}

// afterRobber returns play to the interrupted turn phase: pre_roll if
// the robber came from a knight played before rolling, main otherwise.
func afterRobber(gs *GameState) []Event {
	if gs.LastDiceRoll == nil {
		gs.TurnPhase = TurnPreRoll
	} else {
		gs.TurnPhase = TurnMain
	}
	return nil
}
