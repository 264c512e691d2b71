package catan

import (
	"fmt"

	"github.com/opencatan/server/pkg/hexgrid"
)

// fakeRNG replays a scripted sequence of Intn results and leaves
// shuffles as the identity permutation, so every test game has the same
// board layout and deck order.
type fakeRNG struct {
	ints []int
}

func (r *fakeRNG) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0] % n
	r.ints = r.ints[1:]
	return v
}

func (r *fakeRNG) Shuffle(n int, swap func(i, j int)) {}

func testSeats(n int) []Seat {
	colors := AllColors()
	seats := make([]Seat, n)
	for i := range seats {
		seats[i] = Seat{
			PlayerID: fmt.Sprintf("p%d", i+1),
			UserID:   fmt.Sprintf("u%d", i+1),
			Username: fmt.Sprintf("player%d", i+1),
			Color:    colors[i],
		}
	}
	return seats
}

// newPlayingGame returns a deterministic game forced straight into the
// playing phase with join-order turn order and p1 to act.
func newPlayingGame(n int) *GameState {
	gs := NewGame("game-1", "ABCD23", testSeats(n), &fakeRNG{})
	order := make([]string, 0, n)
	for _, p := range gs.Players {
		order = append(order, p.ID)
	}
	gs.TurnOrder = order
	gs.CurrentPlayerIndex = 0
	gs.Phase = PhasePlaying
	gs.Status = StatusPlaying
	gs.TurnPhase = TurnPreRoll
	gs.TurnNumber = 1
	gs.RollForOrder = nil
	gs.Setup = nil
	return gs
}

// inMainPhase marks the current turn as already rolled.
func inMainPhase(gs *GameState) {
	gs.TurnPhase = TurnMain
	gs.LastDiceRoll = &DiceRoll{Die1: 2, Die2: 3}
}

func corner(q, r, d int) string {
	id, err := hexgrid.CornerVertexID(hexgrid.Hex{Q: q, R: r}, d)
	if err != nil {
		panic(err)
	}
	return id
}

func side(q, r, d int) string {
	id, err := hexgrid.SideEdgeID(hexgrid.Hex{Q: q, R: r}, d)
	if err != nil {
		panic(err)
	}
	return id
}

func findEvent(events []Event, eventType string) *Event {
	for i := range events {
		if events[i].Type == eventType {
			return &events[i]
		}
	}
	return nil
}

func ruleCode(err error) string {
	if re, ok := err.(*RuleError); ok {
		return re.Code
	}
	return ""
}
