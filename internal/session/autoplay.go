package session

import (
	"github.com/rs/zerolog/log"

	"github.com/opencatan/server/pkg/catan"
)

// autoAdvance plays the forced continuation after a turn timer expires:
// pending discards are resolved, the robber sequence completes, any
// open card phase is closed, and the turn is handed to the next player.
// It is best effort; if a step refuses, whatever progressed so far is
// kept.
func autoAdvance(gs *catan.GameState, rng catan.RNG) ([]catan.Event, error) {
	var all []catan.Event
	for i := 0; i < 12; i++ {
		cur := gs.CurrentPlayer()
		if cur == nil || gs.Phase != catan.PhasePlaying {
			return all, nil
		}
		var (
			events []catan.Event
			err    error
			done   bool
		)
		switch gs.TurnPhase {
		case catan.TurnDiscard:
			events, err = autoDiscard(gs)
		case catan.TurnPreRoll:
			events, err = catan.RollDice(gs, cur.ID, rng)
		case catan.TurnRobberMove:
			events, err = autoMoveRobber(gs, cur.ID)
		case catan.TurnRobberSteal:
			events, err = autoSteal(gs, cur.ID, rng)
		case catan.TurnRoadBuilding:
			events, err = autoFinishRoadBuilding(gs, cur.ID)
		case catan.TurnMain:
			events, err = catan.EndTurn(gs, cur.ID)
			done = true
		default:
			return all, nil
		}
		if err != nil {
			log.Warn().Err(err).Str("code", gs.Code).Str("turnPhase", string(gs.TurnPhase)).
				Msg("Auto-advance step refused")
			return all, nil
		}
		all = append(all, events...)
		if done {
			return all, nil
		}
	}
	return all, nil
}

// autoDiscard resolves the discard barrier for every pending player,
// taking cards in canonical resource order.
func autoDiscard(gs *catan.GameState) ([]catan.Event, error) {
	var all []catan.Event
	pending := append([]catan.PendingDiscard(nil), gs.PendingDiscards...)
	for _, pd := range pending {
		p := gs.Player(pd.PlayerID)
		if p == nil {
			continue
		}
		events, err := catan.DiscardResources(gs, pd.PlayerID, pickDiscard(p.Resources, pd.Count))
		if err != nil {
			return all, err
		}
		all = append(all, events...)
	}
	return all, nil
}

func pickDiscard(hand catan.ResourceCount, n int) catan.ResourceCount {
	var out catan.ResourceCount
	for _, r := range catan.AllResources() {
		take := hand.Get(r)
		if take > n {
			take = n
		}
		out.Add(r, take)
		n -= take
		if n == 0 {
			break
		}
	}
	return out
}

// autoMoveRobber parks the robber on the first tile it can occupy, in
// spiral order.
func autoMoveRobber(gs *catan.GameState, playerID string) ([]catan.Event, error) {
	for _, h := range gs.Board.Hexes {
		if h.ID == gs.Board.RobberHex {
			continue
		}
		return catan.MoveRobber(gs, playerID, h.ID)
	}
	return nil, nil
}

// autoSteal steals from the first player the rules allow.
func autoSteal(gs *catan.GameState, playerID string, rng catan.RNG) ([]catan.Event, error) {
	var lastErr error
	for _, victim := range gs.Players {
		if victim.ID == playerID {
			continue
		}
		events, err := catan.StealResource(gs, playerID, victim.ID, rng)
		if err == nil {
			return events, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// autoFinishRoadBuilding places the owed free roads on the first legal
// edges, then returns to the main phase.
func autoFinishRoadBuilding(gs *catan.GameState, playerID string) ([]catan.Event, error) {
	var all []catan.Event
	for gs.TurnPhase == catan.TurnRoadBuilding {
		if events, err := catan.EndRoadBuilding(gs, playerID); err == nil {
			return append(all, events...), nil
		}
		placed := false
		for _, edgeID := range gs.Board.EdgeIDs() {
			events, err := catan.BuildRoad(gs, playerID, edgeID)
			if err == nil {
				all = append(all, events...)
				placed = true
				break
			}
		}
		if !placed {
			return all, nil
		}
	}
	return all, nil
}
