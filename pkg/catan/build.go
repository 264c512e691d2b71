package catan

import (
	"fmt"

	"github.com/opencatan/server/pkg/hexgrid"
)

// checkSettlementSite validates vertex occupancy and the distance rule
// (no building on any edge-adjacent vertex). Connectivity is checked
// separately because setup placements are exempt from it.
func checkSettlementSite(b *Board, vertexID string) error {
	if !b.ValidVertex(vertexID) {
		return ruleErr(CodeInvalidID, "vertex %s is not on the board", vertexID)
	}
	if _, occupied := b.Buildings[vertexID]; occupied {
		return ruleErr(CodeIllegalPlacement, "vertex %s is already occupied", vertexID)
	}
	adjacent, err := hexgrid.AdjacentVertices(vertexID)
	if err != nil {
		return ruleErr(CodeInvalidID, "vertex %s: %v", vertexID, err)
	}
	for _, v := range adjacent {
		if _, occupied := b.Buildings[v]; occupied {
			return ruleErr(CodeIllegalPlacement, "vertex %s violates the distance rule", vertexID)
		}
	}
	return nil
}

// edgeTouchesVertex reports whether the vertex is an endpoint of the edge.
func edgeTouchesVertex(edgeID, vertexID string) bool {
	vs, err := hexgrid.EdgeVertices(edgeID)
	if err != nil {
		return false
	}
	return vs[0] == vertexID || vs[1] == vertexID
}

// playerRoadConnectsTo reports whether the player may attach a new road
// at the given vertex: either the player has a building there, or the
// player has a road ending there and no opponent building blocks the
// vertex.
func playerRoadConnectsTo(gs *GameState, p *PlayerState, vertexID string) bool {
	if b, ok := gs.Board.Buildings[vertexID]; ok {
		return b.PlayerID == p.ID
	}
	for _, e := range p.Roads {
		if edgeTouchesVertex(e, vertexID) {
			return true
		}
	}
	return false
}

// playerHasRoadToVertex reports whether the player owns a road incident
// to the vertex (settlement connectivity requirement).
func playerHasRoadToVertex(p *PlayerState, vertexID string) bool {
	for _, e := range p.Roads {
		if edgeTouchesVertex(e, vertexID) {
			return true
		}
	}
	return false
}

// placeSettlement records a settlement on the board and player.
func placeSettlement(gs *GameState, p *PlayerState, vertexID string) {
	gs.Board.Buildings[vertexID] = Building{
		VertexID: vertexID,
		PlayerID: p.ID,
		Type:     BuildingSettlement,
	}
	p.Settlements = append(p.Settlements, vertexID)
	p.PublicVictoryPoints++
}

// placeRoad records a road on the board and player.
func placeRoad(gs *GameState, p *PlayerState, edgeID string) {
	gs.Board.Roads[edgeID] = Road{EdgeID: edgeID, PlayerID: p.ID}
	p.Roads = append(p.Roads, edgeID)
}

// payCost moves the cost from the player's hand to the bank.
func payCost(gs *GameState, p *PlayerState, cost ResourceCount, what string) error {
	if !p.Resources.Covers(cost) {
		return ruleErr(CodeCannotAfford, "cannot afford %s", what)
	}
	p.Resources = p.Resources.Minus(cost)
	gs.Bank = gs.Bank.Plus(cost)
	return nil
}

// BuildSettlement places a settlement during normal play: the vertex
// must satisfy the distance rule, be connected to the player's road
// network, and the player must pay the cost and have a free piece.
func BuildSettlement(gs *GameState, playerID, vertexID string) ([]Event, error) {
	if err := gs.requirePlaying(TurnMain); err != nil {
		return nil, err
	}
	p, err := gs.requireCurrent(playerID)
	if err != nil {
		return nil, err
	}
	if len(p.Settlements) >= MaxSettlements {
		return nil, ruleErr(CodePieceExhausted, "no settlement pieces left")
	}
	if err := checkSettlementSite(gs.Board, vertexID); err != nil {
		return nil, err
	}
	if !playerHasRoadToVertex(p, vertexID) {
		return nil, ruleErr(CodeIllegalPlacement, "vertex %s is not connected to your roads", vertexID)
	}
	if err := payCost(gs, p, CostSettlement, "a settlement"); err != nil {
		return nil, err
	}

	placeSettlement(gs, p, vertexID)

	events := []Event{broadcast(EventSettlementPlaced, map[string]any{
		"player_id": playerID,
		"vertex_id": vertexID,
	})}
	// A new settlement can cut an opponent's road chain.
	events = append(events, recomputeLongestRoad(gs)...)
	events = append(events, gs.checkWinner()...)
	return events, nil
}

// BuildCity upgrades one of the player's settlements to a city. The
// settlement piece returns to the player's supply.
func BuildCity(gs *GameState, playerID, vertexID string) ([]Event, error) {
	if err := gs.requirePlaying(TurnMain); err != nil {
		return nil, err
	}
	p, err := gs.requireCurrent(playerID)
	if err != nil {
		return nil, err
	}
	if len(p.Cities) >= MaxCities {
		return nil, ruleErr(CodePieceExhausted, "no city pieces left")
	}
	existing, ok := gs.Board.Buildings[vertexID]
	if !ok || existing.PlayerID != playerID || existing.Type != BuildingSettlement {
		return nil, ruleErr(CodeIllegalPlacement, "vertex %s does not hold your settlement", vertexID)
	}
	if err := payCost(gs, p, CostCity, "a city"); err != nil {
		return nil, err
	}

	gs.Board.Buildings[vertexID] = Building{
		VertexID: vertexID,
		PlayerID: playerID,
		Type:     BuildingCity,
	}
	p.Settlements = removeString(p.Settlements, vertexID)
	p.Cities = append(p.Cities, vertexID)
	p.PublicVictoryPoints++ // net: settlement 1 VP becomes city 2 VP

	events := []Event{broadcast(EventCityPlaced, map[string]any{
		"player_id": playerID,
		"vertex_id": vertexID,
	})}
	events = append(events, gs.checkWinner()...)
	return events, nil
}

// BuildRoad places a road during normal play or the road-building card
// phase. Free during road building, costs otherwise.
func BuildRoad(gs *GameState, playerID, edgeID string) ([]Event, error) {
	if gs.Phase != PhasePlaying {
		return nil, ruleErr(CodeWrongPhase, "roads are built during the playing phase")
	}
	if gs.TurnPhase != TurnMain && gs.TurnPhase != TurnRoadBuilding {
		return nil, ruleErr(CodeWrongTurnPhase, "roads cannot be built during %s", gs.TurnPhase)
	}
	p, err := gs.requireCurrent(playerID)
	if err != nil {
		return nil, err
	}
	if len(p.Roads) >= MaxRoads {
		return nil, ruleErr(CodePieceExhausted, "no road pieces left")
	}
	if err := checkRoadSite(gs, p, edgeID); err != nil {
		return nil, err
	}

	free := gs.TurnPhase == TurnRoadBuilding
	if !free {
		if err := payCost(gs, p, CostRoad, "a road"); err != nil {
			return nil, err
		}
	}

	placeRoad(gs, p, edgeID)

	events := []Event{broadcast(EventRoadPlaced, map[string]any{
		"player_id": playerID,
		"edge_id":   edgeID,
		"free":      free,
	})}

	if free {
		gs.RoadBuildingRoadsLeft--
		if gs.RoadBuildingRoadsLeft <= 0 {
			gs.TurnPhase = TurnMain
		}
	}

	events = append(events, recomputeLongestRoad(gs)...)
	events = append(events, gs.checkWinner()...)
	return events, nil
}

// checkRoadSite validates edge occupancy and connectivity for a
// non-setup road.
func checkRoadSite(gs *GameState, p *PlayerState, edgeID string) error {
	if !gs.Board.ValidEdge(edgeID) {
		return ruleErr(CodeInvalidID, "edge %s is not on the board", edgeID)
	}
	if _, taken := gs.Board.Roads[edgeID]; taken {
		return ruleErr(CodeIllegalPlacement, "edge %s already has a road", edgeID)
	}
	vs, err := hexgrid.EdgeVertices(edgeID)
	if err != nil {
		return ruleErr(CodeInvalidID, "edge %s: %v", edgeID, err)
	}
	for _, v := range vs {
		if playerRoadConnectsTo(gs, p, v) {
			return nil
		}
	}
	return ruleErr(CodeIllegalPlacement, "edge %s is not connected to your network", edgeID)
}

// hasLegalRoadPlacement reports whether any free edge is a legal road
// site for the player. Used to allow ending the road-building phase
// early when the player is boxed in.
func hasLegalRoadPlacement(gs *GameState, p *PlayerState) bool {
	for _, e := range gs.Board.EdgeIDs() {
		if checkRoadSite(gs, p, e) == nil {
			return true
		}
	}
	return false
}

// BuyDevCard draws the top card of the shuffled deck. The card cannot
// be played on the turn it was purchased.
func BuyDevCard(gs *GameState, playerID string) ([]Event, error) {
	if err := gs.requirePlaying(TurnMain); err != nil {
		return nil, err
	}
	p, err := gs.requireCurrent(playerID)
	if err != nil {
		return nil, err
	}
	if len(gs.DevCardDeck) == 0 {
		return nil, ruleErr(CodeDeckEmpty, "the development card deck is empty")
	}
	if err := payCost(gs, p, CostDevCard, "a development card"); err != nil {
		return nil, err
	}

	cardType := gs.DevCardDeck[0]
	gs.DevCardDeck = gs.DevCardDeck[1:]
	gs.DevCardDeckCount = len(gs.DevCardDeck)

	card := DevCard{
		ID:              fmt.Sprintf("dev_%s_%d", gs.ID, DeckSize-len(gs.DevCardDeck)),
		Type:            cardType,
		PurchasedOnTurn: gs.TurnNumber,
	}
	p.DevCards = append(p.DevCards, card)

	events := []Event{
		// Card type is visible only to the buyer.
		private(EventDevCardPurchased, map[string]any{
			"player_id": playerID,
			"card":      card,
		}, playerID),
		broadcast(EventDevCardPurchased, map[string]any{
			"player_id":  playerID,
			"deck_count": gs.DevCardDeckCount,
		}),
	}
	// A drawn victory-point card can end the game immediately.
	events = append(events, gs.checkWinner()...)
	return events, nil
}

func removeString(ss []string, s string) []string {
	for i, v := range ss {
		if v == s {
			return append(ss[:i], ss[i+1:]...)
		}
	}
	return ss
}
