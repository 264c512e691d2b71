package catan

import (
	"github.com/opencatan/server/pkg/hexgrid"
)

// longestRoadLength computes the longest simple (edge-disjoint) path in
// the player's road network. An opponent's building cuts the path at
// its vertex: a chain may end there but not pass through. With at most
// fifteen roads per player, exhaustive DFS from every endpoint is cheap.
func longestRoadLength(gs *GameState, p *PlayerState) int {
	if len(p.Roads) == 0 {
		return 0
	}

	// vertex -> incident road edges of this player.
	incident := map[string][]string{}
	for _, e := range p.Roads {
		vs, err := hexgrid.EdgeVertices(e)
		if err != nil {
			continue
		}
		for _, v := range vs {
			incident[v] = append(incident[v], e)
		}
	}

	blocked := func(v string) bool {
		b, ok := gs.Board.Buildings[v]
		return ok && b.PlayerID != p.ID
	}

	used := map[string]bool{}
	var dfs func(v string, length int) int
	dfs = func(v string, length int) int {
		best := length
		// Cannot extend through a vertex held by an opponent, unless
		// this is the start of the walk.
		if length > 0 && blocked(v) {
			return best
		}
		for _, e := range incident[v] {
			if used[e] {
				continue
			}
			used[e] = true
			vs, _ := hexgrid.EdgeVertices(e)
			next := vs[0]
			if next == v {
				next = vs[1]
			}
			if got := dfs(next, length+1); got > best {
				best = got
			}
			used[e] = false
		}
		return best
	}

	best := 0
	for v := range incident {
		if got := dfs(v, 0); got > best {
			best = got
		}
	}
	return best
}

// LongestRoadMinimum is the shortest chain eligible for the award.
const LongestRoadMinimum = 5

// recomputeLongestRoad refreshes every player's chain length and moves
// the longest-road award. The award transfers only on a strictly longer
// chain; ties leave it with the incumbent. If the holder's chain falls
// below the minimum and no one else qualifies, the award is vacated.
// Idempotent: a second run with no state change yields no events.
func recomputeLongestRoad(gs *GameState) []Event {
	for _, p := range gs.Players {
		p.LongestRoadLength = longestRoadLength(gs, p)
	}

	holder := gs.Player(gs.LongestRoadHolder)
	holderLen := 0
	if holder != nil {
		holderLen = holder.LongestRoadLength
	}

	// Find the strongest challenger (first in player order on equal
	// lengths, which also keeps the recompute deterministic).
	var challenger *PlayerState
	for _, p := range gs.Players {
		if holder != nil && p.ID == holder.ID {
			continue
		}
		if challenger == nil || p.LongestRoadLength > challenger.LongestRoadLength {
			challenger = p
		}
	}

	var events []Event
	award := func(to *PlayerState) {
		if holder != nil {
			holder.HasLongestRoad = false
			holder.PublicVictoryPoints -= 2
		}
		if to != nil {
			to.HasLongestRoad = true
			to.PublicVictoryPoints += 2
			gs.LongestRoadHolder = to.ID
			gs.LongestRoadLength = to.LongestRoadLength
			events = append(events, broadcast(EventLongestRoad, map[string]any{
				"player_id": to.ID,
				"length":    to.LongestRoadLength,
			}))
		} else {
			gs.LongestRoadHolder = ""
			gs.LongestRoadLength = 0
			events = append(events, broadcast(EventLongestRoad, map[string]any{
				"player_id": nil,
			}))
		}
	}

	switch {
	case holder == nil:
		if challenger != nil && challenger.LongestRoadLength >= LongestRoadMinimum {
			award(challenger)
		}
	case challenger != nil && challenger.LongestRoadLength >= LongestRoadMinimum &&
		challenger.LongestRoadLength > holderLen:
		// Strictly longer chain takes the award; ties do not transfer.
		award(challenger)
	case holderLen < LongestRoadMinimum:
		// Holder's chain was cut below the minimum. A qualifying
		// challenger takes the award; a longer but unqualified chain
		// vacates it; otherwise the holder retains it.
		switch {
		case challenger != nil && challenger.LongestRoadLength >= LongestRoadMinimum:
			award(challenger)
		case challenger != nil && challenger.LongestRoadLength > holderLen:
			award(nil)
		default:
			gs.LongestRoadLength = holderLen
		}
	default:
		// Holder keeps the award; refresh the recorded length.
		gs.LongestRoadLength = holderLen
	}

	return events
}

// LargestArmyMinimum is the fewest played knights eligible for the award.
const LargestArmyMinimum = 3

// recomputeLargestArmy moves the largest-army award using the same
// strictly-greater, no-tie-transfer rule. Knights played never
// decrease, so the award is never vacated.
func recomputeLargestArmy(gs *GameState) []Event {
	holder := gs.Player(gs.LargestArmyHolder)

	var best *PlayerState
	for _, p := range gs.Players {
		if holder != nil && p.ID == holder.ID {
			continue
		}
		if best == nil || p.KnightsPlayed > best.KnightsPlayed {
			best = p
		}
	}

	holderKnights := 0
	if holder != nil {
		holderKnights = holder.KnightsPlayed
	}
	if best == nil || best.KnightsPlayed < LargestArmyMinimum || best.KnightsPlayed <= holderKnights {
		if holder != nil {
			gs.LargestArmySize = holderKnights
		}
		return nil
	}

	if holder != nil {
		holder.HasLargestArmy = false
		holder.PublicVictoryPoints -= 2
	}
	best.HasLargestArmy = true
	best.PublicVictoryPoints += 2
	gs.LargestArmyHolder = best.ID
	gs.LargestArmySize = best.KnightsPlayed

	return []Event{broadcast(EventLargestArmy, map[string]any{
		"player_id": best.ID,
		"knights":   best.KnightsPlayed,
	})}
}
