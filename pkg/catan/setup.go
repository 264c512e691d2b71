package catan

import (
	"sort"
	"time"
)

// RollForOrder records one player's ordering roll. Any player who has
// not yet rolled may roll; once every player has, turn order is fixed
// as descending totals with ties broken by seating, and the game moves
// to the first setup round.
func RollForOrder(gs *GameState, playerID string, rng RNG) ([]Event, error) {
	if gs.Phase != PhaseRollForOrder {
		return nil, ruleErr(CodeWrongPhase, "ordering rolls are over")
	}
	p := gs.Player(playerID)
	if p == nil {
		return nil, ruleErr(CodeNotInGame, "player %s is not in this game", playerID)
	}
	if _, done := gs.RollForOrder.Rolls[playerID]; done {
		return nil, ruleErr(CodeWrongPhase, "you have already rolled for order")
	}

	roll := DiceRoll{Die1: rollDie(rng), Die2: rollDie(rng)}
	gs.RollForOrder.Rolls[playerID] = roll.Sum()

	events := []Event{broadcast(EventRollForOrderResult, map[string]any{
		"player_id": playerID,
		"die1":      roll.Die1,
		"die2":      roll.Die2,
		"total":     roll.Sum(),
	})}

	if len(gs.RollForOrder.Rolls) == len(gs.Players) {
		events = append(events, fixTurnOrder(gs)...)
	}
	return events, nil
}

// fixTurnOrder computes the final turn order and enters setup.
func fixTurnOrder(gs *GameState) []Event {
	seating := gs.RollForOrder.Seating
	seatIndex := make(map[string]int, len(seating))
	for i, id := range seating {
		seatIndex[id] = i
	}
	order := append([]string(nil), seating...)
	rolls := gs.RollForOrder.Rolls
	sort.SliceStable(order, func(i, j int) bool {
		if rolls[order[i]] != rolls[order[j]] {
			return rolls[order[i]] > rolls[order[j]]
		}
		return seatIndex[order[i]] < seatIndex[order[j]]
	})

	gs.TurnOrder = order
	gs.CurrentPlayerIndex = 0
	gs.Phase = PhaseSetupFirst
	gs.Setup = &SetupState{LastSettlement: map[string]string{}}

	return []Event{
		broadcast(EventPhaseChanged, map[string]any{
			"phase":      gs.Phase,
			"turn_order": gs.TurnOrder,
		}),
		broadcast(EventTurnChanged, map[string]any{
			"player_id": gs.TurnOrder[0],
		}),
	}
}

// PlaceSetupSettlement places a free settlement during a setup round.
// The distance rule applies; connectivity and cost do not. The second
// round settlement immediately produces one of each adjacent resource.
func PlaceSetupSettlement(gs *GameState, playerID, vertexID string) ([]Event, error) {
	if gs.Phase != PhaseSetupFirst && gs.Phase != PhaseSetupSecond {
		return nil, ruleErr(CodeWrongPhase, "settlement setup placement requires a setup round")
	}
	p, err := gs.requireCurrent(playerID)
	if err != nil {
		return nil, err
	}
	if gs.Setup.SettlementPlaced {
		return nil, ruleErr(CodeWrongPhase, "you must place your setup road first")
	}
	if err := checkSettlementSite(gs.Board, vertexID); err != nil {
		return nil, err
	}

	placeSettlement(gs, p, vertexID)
	gs.Setup.SettlementPlaced = true
	gs.Setup.LastSettlement[playerID] = vertexID

	events := []Event{broadcast(EventSettlementPlaced, map[string]any{
		"player_id": playerID,
		"vertex_id": vertexID,
	})}

	if gs.Phase == PhaseSetupSecond {
		granted := grantInitialProduction(gs, p, vertexID)
		if granted.Total() > 0 {
			events = append(events, broadcast(EventResourcesDistributed, map[string]any{
				"distributions": map[string]ResourceCount{playerID: granted},
				"reason":        "initial_placement",
			}))
		}
	}
	return events, nil
}

// grantInitialProduction pays one of each resource adjacent to the
// second-round settlement, bounded by the bank.
func grantInitialProduction(gs *GameState, p *PlayerState, vertexID string) ResourceCount {
	var granted ResourceCount
	for _, tile := range gs.Board.TilesAdjacentToVertex(vertexID) {
		res, ok := tile.Terrain.Produces()
		if !ok {
			continue
		}
		if gs.Bank.Get(res) < 1 {
			continue
		}
		gs.Bank.Add(res, -1)
		p.Resources.Add(res, 1)
		granted.Add(res, 1)
	}
	return granted
}

// PlaceSetupRoad places the free road that follows a setup settlement.
// It must touch the settlement just placed in this setup step.
func PlaceSetupRoad(gs *GameState, playerID, edgeID string) ([]Event, error) {
	if gs.Phase != PhaseSetupFirst && gs.Phase != PhaseSetupSecond {
		return nil, ruleErr(CodeWrongPhase, "road setup placement requires a setup round")
	}
	p, err := gs.requireCurrent(playerID)
	if err != nil {
		return nil, err
	}
	if !gs.Setup.SettlementPlaced {
		return nil, ruleErr(CodeWrongPhase, "place your setup settlement first")
	}
	if !gs.Board.ValidEdge(edgeID) {
		return nil, ruleErr(CodeInvalidID, "edge %s is not on the board", edgeID)
	}
	if _, taken := gs.Board.Roads[edgeID]; taken {
		return nil, ruleErr(CodeIllegalPlacement, "edge %s already has a road", edgeID)
	}
	if !edgeTouchesVertex(edgeID, gs.Setup.LastSettlement[playerID]) {
		return nil, ruleErr(CodeIllegalPlacement, "setup road must touch the settlement you just placed")
	}

	placeRoad(gs, p, edgeID)
	events := []Event{broadcast(EventRoadPlaced, map[string]any{
		"player_id": playerID,
		"edge_id":   edgeID,
	})}
	events = append(events, recomputeLongestRoad(gs)...)
	gs.Setup.SettlementPlaced = false
	events = append(events, advanceSetup(gs)...)
	return events, nil
}

// advanceSetup moves to the next setup seat: forward through turn order
// in the first round, reverse in the second, then into normal play.
func advanceSetup(gs *GameState) []Event {
	switch gs.Phase {
	case PhaseSetupFirst:
		if gs.CurrentPlayerIndex+1 < len(gs.TurnOrder) {
			gs.CurrentPlayerIndex++
			return []Event{broadcast(EventTurnChanged, map[string]any{
				"player_id": gs.TurnOrder[gs.CurrentPlayerIndex],
			})}
		}
		gs.Phase = PhaseSetupSecond
		gs.Setup.LastSettlement = map[string]string{}
		// The last player of round one places again first in round two.
		return []Event{
			broadcast(EventPhaseChanged, map[string]any{"phase": gs.Phase}),
			broadcast(EventTurnChanged, map[string]any{
				"player_id": gs.TurnOrder[gs.CurrentPlayerIndex],
			}),
		}
	case PhaseSetupSecond:
		if gs.CurrentPlayerIndex > 0 {
			gs.CurrentPlayerIndex--
			return []Event{broadcast(EventTurnChanged, map[string]any{
				"player_id": gs.TurnOrder[gs.CurrentPlayerIndex],
			})}
		}
		return beginPlay(gs)
	}
	return nil
}

// beginPlay transitions from setup into the first normal turn.
func beginPlay(gs *GameState) []Event {
	now := time.Now().UTC()
	gs.Phase = PhasePlaying
	gs.Status = StatusPlaying
	gs.Setup = nil
	gs.RollForOrder = nil
	gs.CurrentPlayerIndex = 0
	gs.TurnNumber = 1
	gs.TurnPhase = TurnPreRoll
	gs.StartedAt = &now
	return []Event{
		broadcast(EventPhaseChanged, map[string]any{"phase": gs.Phase}),
		broadcast(EventGameStarted, map[string]any{
			"turn_order": gs.TurnOrder,
			"player_id":  gs.TurnOrder[0],
		}),
	}
}
