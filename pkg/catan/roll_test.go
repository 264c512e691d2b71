package catan

import (
	"testing"
)

// The identity-shuffle board puts hills with token 2 at hex_1_0 and the
// desert (with the robber) at the center.

func TestRollDiceDistributesProduction(t *testing.T) {
	gs := newPlayingGame(2)
	p1 := gs.Players[0]
	placeSettlement(gs, p1, corner(1, 0, 0))
	bankBrick := gs.Bank.Brick

	events, err := RollDice(gs, "p1", &fakeRNG{ints: []int{0, 0}})
	if err != nil {
		t.Fatalf("roll: %v", err)
	}

	if gs.LastDiceRoll == nil || gs.LastDiceRoll.Sum() != 2 {
		t.Fatalf("last roll = %+v, want total 2", gs.LastDiceRoll)
	}
	if gs.TurnPhase != TurnMain {
		t.Fatalf("turn phase = %s, want main", gs.TurnPhase)
	}
	if p1.Resources.Brick != 1 {
		t.Errorf("p1 brick = %d, want 1", p1.Resources.Brick)
	}
	if gs.Bank.Brick != bankBrick-1 {
		t.Errorf("bank brick = %d, want %d", gs.Bank.Brick, bankBrick-1)
	}
	if findEvent(events, EventDiceRolled) == nil || findEvent(events, EventResourcesDistributed) == nil {
		t.Error("expected dice:rolled and dice:resources_distributed events")
	}
}

func TestRollDiceCityProducesDouble(t *testing.T) {
	gs := newPlayingGame(2)
	p1 := gs.Players[0]
	v := corner(1, 0, 0)
	gs.Board.Buildings[v] = Building{VertexID: v, PlayerID: "p1", Type: BuildingCity}
	p1.Cities = append(p1.Cities, v)

	if _, err := RollDice(gs, "p1", &fakeRNG{ints: []int{0, 0}}); err != nil {
		t.Fatalf("roll: %v", err)
	}
	if p1.Resources.Brick != 2 {
		t.Errorf("city production = %d brick, want 2", p1.Resources.Brick)
	}
}

func TestRollDiceRobberBlocksTile(t *testing.T) {
	gs := newPlayingGame(2)
	p1 := gs.Players[0]
	placeSettlement(gs, p1, corner(1, 0, 0))
	gs.Board.RobberHex = "hex_1_0"

	if _, err := RollDice(gs, "p1", &fakeRNG{ints: []int{0, 0}}); err != nil {
		t.Fatalf("roll: %v", err)
	}
	if p1.Resources.Total() != 0 {
		t.Errorf("robbed tile must not produce, got %+v", p1.Resources)
	}
}

func TestRollDiceBankScarcity(t *testing.T) {
	// Two players owed more than the bank holds: nobody is paid.
	gs := newPlayingGame(2)
	placeSettlement(gs, gs.Players[0], corner(1, 0, 0))
	placeSettlement(gs, gs.Players[1], corner(1, 0, 2))
	gs.Bank.Brick = 1

	if _, err := RollDice(gs, "p1", &fakeRNG{ints: []int{0, 0}}); err != nil {
		t.Fatalf("roll: %v", err)
	}
	if gs.Players[0].Resources.Brick != 0 || gs.Players[1].Resources.Brick != 0 {
		t.Error("contested short resource must not be paid to anyone")
	}
	if gs.Bank.Brick != 1 {
		t.Errorf("bank brick = %d, want untouched 1", gs.Bank.Brick)
	}
}

func TestRollDiceBankScarcitySoleRecipient(t *testing.T) {
	// A single player owed more than the supply takes what remains.
	gs := newPlayingGame(2)
	p1 := gs.Players[0]
	v := corner(1, 0, 0)
	gs.Board.Buildings[v] = Building{VertexID: v, PlayerID: "p1", Type: BuildingCity}
	p1.Cities = append(p1.Cities, v)
	gs.Bank.Brick = 1

	if _, err := RollDice(gs, "p1", &fakeRNG{ints: []int{0, 0}}); err != nil {
		t.Fatalf("roll: %v", err)
	}
	if p1.Resources.Brick != 1 {
		t.Errorf("sole recipient brick = %d, want 1", p1.Resources.Brick)
	}
	if gs.Bank.Brick != 0 {
		t.Errorf("bank brick = %d, want 0", gs.Bank.Brick)
	}
}

func TestRollSevenEntersDiscardBarrier(t *testing.T) {
	gs := newPlayingGame(3)
	gs.Players[0].Resources = ResourceCount{Brick: 9}
	gs.Players[1].Resources = ResourceCount{Wool: 7} // exactly 7: no discard
	gs.Players[2].Resources = ResourceCount{Ore: 8}

	events, err := RollDice(gs, "p1", &fakeRNG{ints: []int{2, 3}})
	if err != nil {
		t.Fatalf("roll: %v", err)
	}

	if gs.TurnPhase != TurnDiscard {
		t.Fatalf("turn phase = %s, want discard", gs.TurnPhase)
	}
	if len(gs.PendingDiscards) != 2 {
		t.Fatalf("pending discards = %+v, want p1 and p3", gs.PendingDiscards)
	}
	for _, pd := range gs.PendingDiscards {
		switch pd.PlayerID {
		case "p1":
			if pd.Count != 4 {
				t.Errorf("p1 must discard 4, got %d", pd.Count)
			}
		case "p3":
			if pd.Count != 4 {
				t.Errorf("p3 must discard 4, got %d", pd.Count)
			}
		default:
			t.Errorf("unexpected pending discard for %s", pd.PlayerID)
		}
	}
	if findEvent(events, EventDiscardRequired) == nil {
		t.Error("expected a robber:discard_required event")
	}
}

func TestRollSevenSkipsDiscardWhenHandsSmall(t *testing.T) {
	gs := newPlayingGame(2)
	gs.Players[0].Resources = ResourceCount{Brick: 3}

	if _, err := RollDice(gs, "p1", &fakeRNG{ints: []int{2, 3}}); err != nil {
		t.Fatalf("roll: %v", err)
	}
	if gs.TurnPhase != TurnRobberMove {
		t.Fatalf("turn phase = %s, want robber_move", gs.TurnPhase)
	}
}

func TestRollDiceGuards(t *testing.T) {
	gs := newPlayingGame(2)

	if _, err := RollDice(gs, "p2", &fakeRNG{}); ruleCode(err) != CodeNotYourTurn {
		t.Errorf("off-turn roll error = %v, want not_your_turn", err)
	}

	inMainPhase(gs)
	if _, err := RollDice(gs, "p1", &fakeRNG{}); ruleCode(err) != CodeWrongTurnPhase {
		t.Errorf("double roll error = %v, want wrong_turn_phase", err)
	}
}
