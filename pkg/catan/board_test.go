package catan

import (
	"testing"
)

func TestValidVertexRequiresRealCorner(t *testing.T) {
	gs := newPlayingGame(2)
	b := gs.Board

	// Sorted and board-touching, but only two hexes: an edge, not a
	// corner.
	if b.ValidVertex("v_hex_0_0_hex_1_0") {
		t.Error("two-hex ID must not be a valid vertex")
	}
	// Three hexes on the board that never meet at a point.
	if b.ValidVertex("v_hex_-2_2_hex_0_0_hex_2_-2") {
		t.Error("non-adjacent hex triple must not be a valid vertex")
	}
	if b.ValidVertex("") || b.ValidVertex("v_hex_0_0") {
		t.Error("malformed IDs must not be valid vertices")
	}

	if !b.ValidVertex(corner(0, 0, 0)) {
		t.Error("a real corner must be valid")
	}
	for _, v := range b.VertexIDs() {
		if !b.ValidVertex(v) {
			t.Errorf("canonical vertex %s must be valid", v)
		}
	}
}

func TestSettlementRejectsMalformedCorner(t *testing.T) {
	gs := NewGame("game-1", "ABCD23", testSeats(2), &fakeRNG{})
	gs.TurnOrder = []string{"p1", "p2"}
	gs.Phase = PhaseSetupFirst
	gs.Setup = &SetupState{LastSettlement: map[string]string{}}

	for _, id := range []string{"v_hex_0_0_hex_1_0", "v_hex_-2_2_hex_0_0_hex_2_-2"} {
		if _, err := PlaceSetupSettlement(gs, "p1", id); ruleCode(err) != CodeInvalidID {
			t.Errorf("setup settlement on %s error = %v, want invalid_id", id, err)
		}
	}
	if len(gs.Player("p1").Settlements) != 0 {
		t.Error("no settlement may be placed on a malformed corner")
	}
}
