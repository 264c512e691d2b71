package catan

import (
	"testing"
)

func TestRobberFullSequence(t *testing.T) {
	gs := newPlayingGame(2)
	p1, p2 := gs.Players[0], gs.Players[1]
	p1.Resources = ResourceCount{Brick: 9}
	p2.Resources = ResourceCount{Wool: 2}
	placeSettlement(gs, p2, corner(1, 0, 0))

	if _, err := RollDice(gs, "p1", &fakeRNG{ints: []int{2, 3}}); err != nil {
		t.Fatalf("roll: %v", err)
	}
	if gs.TurnPhase != TurnDiscard {
		t.Fatalf("turn phase = %s, want discard", gs.TurnPhase)
	}

	// Wrong count first, then the exact half.
	if _, err := DiscardResources(gs, "p1", ResourceCount{Brick: 3}); ruleCode(err) != CodeInvalidPayload {
		t.Fatalf("short discard error = %v, want invalid_payload", err)
	}
	if _, err := DiscardResources(gs, "p2", ResourceCount{Wool: 1}); ruleCode(err) != CodeWrongTurnPhase {
		t.Fatalf("uninvolved discard error = %v, want wrong_turn_phase", err)
	}
	if _, err := DiscardResources(gs, "p1", ResourceCount{Brick: 4}); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if p1.Resources.Brick != 5 {
		t.Errorf("p1 brick after discard = %d, want 5", p1.Resources.Brick)
	}
	if gs.TurnPhase != TurnRobberMove {
		t.Fatalf("turn phase = %s, want robber_move", gs.TurnPhase)
	}

	// Robber may not stay put.
	if _, err := MoveRobber(gs, "p1", gs.Board.RobberHex); ruleCode(err) != CodeIllegalPlacement {
		t.Fatalf("stationary robber error = %v, want illegal_placement", err)
	}
	if _, err := MoveRobber(gs, "p1", "hex_9_9"); ruleCode(err) != CodeInvalidID {
		t.Fatalf("off-board robber error = %v, want invalid_id", err)
	}
	if _, err := MoveRobber(gs, "p1", "hex_1_0"); err != nil {
		t.Fatalf("move robber: %v", err)
	}
	if gs.Board.RobberHex != "hex_1_0" {
		t.Errorf("robber on %s, want hex_1_0", gs.Board.RobberHex)
	}
	if gs.TurnPhase != TurnRobberSteal {
		t.Fatalf("turn phase = %s, want robber_steal", gs.TurnPhase)
	}

	// p2 is the only target; their hand is all wool.
	if _, err := StealResource(gs, "p1", "p1", &fakeRNG{}); ruleCode(err) != CodeIllegalPlacement {
		t.Fatalf("self-steal error = %v, want illegal_placement", err)
	}
	events, err := StealResource(gs, "p1", "p2", &fakeRNG{ints: []int{0}})
	if err != nil {
		t.Fatalf("steal: %v", err)
	}
	if p2.Resources.Wool != 1 || p1.Resources.Wool != 1 {
		t.Errorf("steal moved wool %d->%d, want 1 each side", p2.Resources.Wool, p1.Resources.Wool)
	}
	reveal := findEvent(events, EventRobberSteal)
	if reveal == nil {
		t.Fatal("expected a robber:steal event")
	}
	if gs.TurnPhase != TurnMain {
		t.Errorf("after a post-roll steal turn phase = %s, want main", gs.TurnPhase)
	}
}

func TestStealRevealIsPrivate(t *testing.T) {
	gs := newPlayingGame(2)
	gs.TurnPhase = TurnRobberSteal
	gs.LastDiceRoll = &DiceRoll{Die1: 3, Die2: 4}
	p2 := gs.Players[1]
	p2.Resources = ResourceCount{Ore: 1}
	placeSettlement(gs, p2, corner(1, 0, 0))
	gs.Board.RobberHex = "hex_1_0"

	events, err := StealResource(gs, "p1", "p2", &fakeRNG{ints: []int{0}})
	if err != nil {
		t.Fatalf("steal: %v", err)
	}

	var sawPublic, sawPrivate bool
	for _, ev := range events {
		if ev.Type != EventRobberSteal {
			continue
		}
		if len(ev.Recipients) == 0 {
			sawPublic = true
			if data, ok := ev.Data.(map[string]any); ok {
				if _, leaked := data["resource"]; leaked {
					t.Error("broadcast steal event must not name the resource")
				}
			}
			continue
		}
		sawPrivate = true
		if len(ev.Recipients) != 2 {
			t.Errorf("reveal recipients = %v, want thief and victim", ev.Recipients)
		}
	}
	if !sawPublic || !sawPrivate {
		t.Errorf("expected public and private steal events, got public=%v private=%v", sawPublic, sawPrivate)
	}
}

func TestMoveRobberSkipsStealWithoutTargets(t *testing.T) {
	gs := newPlayingGame(2)
	gs.TurnPhase = TurnRobberMove
	gs.LastDiceRoll = &DiceRoll{Die1: 3, Die2: 4}

	if _, err := MoveRobber(gs, "p1", "hex_2_0"); err != nil {
		t.Fatalf("move robber: %v", err)
	}
	if gs.TurnPhase != TurnMain {
		t.Errorf("turn phase = %s, want main (no steal targets)", gs.TurnPhase)
	}
}

func TestStealFromEmptyHandCompletesSequence(t *testing.T) {
	gs := newPlayingGame(2)
	gs.TurnPhase = TurnRobberSteal
	gs.LastDiceRoll = &DiceRoll{Die1: 3, Die2: 4}
	p2 := gs.Players[1]
	placeSettlement(gs, p2, corner(1, 0, 0))
	gs.Board.RobberHex = "hex_1_0"

	if _, err := StealResource(gs, "p1", "p2", &fakeRNG{}); err != nil {
		t.Fatalf("steal: %v", err)
	}
	if gs.Players[0].Resources.Total() != 0 {
		t.Error("nothing to steal from an empty hand")
	}
	if gs.TurnPhase != TurnMain {
		t.Errorf("turn phase = %s, want main", gs.TurnPhase)
	}
}

func TestRobberFromPreRollKnightReturnsToPreRoll(t *testing.T) {
	gs := newPlayingGame(2)
	p1 := gs.Players[0]
	p1.DevCards = []DevCard{{ID: "d1", Type: CardKnight, PurchasedOnTurn: 0}}

	if _, err := PlayKnight(gs, "p1"); err != nil {
		t.Fatalf("knight: %v", err)
	}
	if gs.TurnPhase != TurnRobberMove {
		t.Fatalf("turn phase = %s, want robber_move", gs.TurnPhase)
	}
	if _, err := MoveRobber(gs, "p1", "hex_2_0"); err != nil {
		t.Fatalf("move robber: %v", err)
	}
	if gs.TurnPhase != TurnPreRoll {
		t.Fatalf("turn phase = %s, want pre_roll (dice not yet rolled)", gs.TurnPhase)
	}
	// The roll still happens this turn.
	if _, err := RollDice(gs, "p1", &fakeRNG{ints: []int{0, 1}}); err != nil {
		t.Fatalf("roll after pre-roll knight: %v", err)
	}
}
