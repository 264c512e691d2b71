package catan

import (
	"time"
)

// GameStatus is the overall game lifecycle status.
type GameStatus string

const (
	StatusWaiting   GameStatus = "waiting"
	StatusSetup     GameStatus = "setup"
	StatusPlaying   GameStatus = "playing"
	StatusFinished  GameStatus = "finished"
	StatusAbandoned GameStatus = "abandoned"
)

// Phase is the top-level phase machine.
type Phase string

const (
	PhaseRollForOrder Phase = "roll_for_order"
	PhaseSetupFirst   Phase = "setup_first"
	PhaseSetupSecond  Phase = "setup_second"
	PhasePlaying      Phase = "playing"
	PhaseFinished     Phase = "finished"
)

// TurnPhase is the nested turn-phase machine, meaningful while
// Phase == playing.
type TurnPhase string

const (
	TurnPreRoll      TurnPhase = "pre_roll"
	TurnMain         TurnPhase = "main"
	TurnDiscard      TurnPhase = "discard"
	TurnRobberMove   TurnPhase = "robber_move"
	TurnRobberSteal  TurnPhase = "robber_steal"
	TurnRoadBuilding TurnPhase = "road_building"
)

// DiceRoll is the result of a two-die roll.
type DiceRoll struct {
	Die1 int `json:"die1"`
	Die2 int `json:"die2"`
}

// Sum returns the roll total.
func (d DiceRoll) Sum() int { return d.Die1 + d.Die2 }

// PendingDiscard is one entry of the discard barrier entered on a
// seven-roll: the player must discard exactly Count cards.
type PendingDiscard struct {
	PlayerID string `json:"player_id"`
	Count    int    `json:"count"`
}

// TradeOffer is the single active player-to-player trade proposal.
type TradeOffer struct {
	ID         string        `json:"id"`
	ProposerID string        `json:"proposer_id"`
	TargetID   string        `json:"target_id,omitempty"` // empty = open to all
	Offer      ResourceCount `json:"offer"`
	Request    ResourceCount `json:"request"`
	CreatedAt  time.Time     `json:"created_at"`
	ExpiresAt  time.Time     `json:"expires_at"`
}

// RollForOrderState tracks the pre-setup ordering rolls.
type RollForOrderState struct {
	Seating []string       `json:"seating"` // fixed seating order
	Rolls   map[string]int `json:"rolls"`   // player ID -> total
}

// SetupState tracks the two-round snake placement.
type SetupState struct {
	// SettlementPlaced is true when the current setup player has placed
	// their settlement and still owes the matching road.
	SettlementPlaced bool `json:"settlement_placed"`
	// LastSettlement maps each player to the settlement vertex placed in
	// the current round; the setup road must touch it.
	LastSettlement map[string]string `json:"last_settlement"`
}

// GameState is one game's complete authoritative state. It is owned
// exclusively by the game's actor; clients only ever see snapshots.
type GameState struct {
	ID     string     `json:"id"`
	Code   string     `json:"code"`
	Status GameStatus `json:"status"`
	Phase  Phase      `json:"phase"`

	Board   *Board         `json:"board"`
	Players []*PlayerState `json:"players"`

	TurnOrder          []string  `json:"turn_order"`
	CurrentPlayerIndex int       `json:"current_player_index"`
	TurnNumber         int       `json:"turn_number"`
	TurnPhase          TurnPhase `json:"turn_phase"`
	LastDiceRoll       *DiceRoll `json:"last_dice_roll"`

	Bank ResourceCount `json:"bank"`

	// DevCardDeck is the shuffled draw pile; redacted from snapshots.
	DevCardDeck      []DevCardType `json:"dev_card_deck,omitempty"`
	DevCardDeckCount int           `json:"dev_card_deck_count"`

	RollForOrder *RollForOrderState `json:"roll_for_order,omitempty"`
	Setup        *SetupState        `json:"setup,omitempty"`

	ActiveTrade     *TradeOffer      `json:"active_trade,omitempty"`
	PendingDiscards []PendingDiscard `json:"pending_discards"`

	RoadBuildingRoadsLeft int `json:"road_building_roads_left"`

	LongestRoadHolder string `json:"longest_road_holder,omitempty"`
	LongestRoadLength int    `json:"longest_road_length"`
	LargestArmyHolder string `json:"largest_army_holder,omitempty"`
	LargestArmySize   int    `json:"largest_army_size"`

	WinnerID string `json:"winner_id,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Seat describes one joining player when a game is created.
type Seat struct {
	PlayerID string
	UserID   string
	Username string
	Color    Color
}

// VictoryPointsToWin ends the game when any player's total VP reaches it.
const VictoryPointsToWin = 10

// NewGame builds the initial state for the given seats: fresh board,
// full bank, shuffled deck, roll-for-order pending. Seating order is
// the join order.
func NewGame(id, code string, seats []Seat, rng RNG) *GameState {
	deck := NewDeck()
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	gs := &GameState{
		ID:               id,
		Code:             code,
		Status:           StatusSetup,
		Phase:            PhaseRollForOrder,
		Board:            GenerateBoard(rng),
		Bank:             NewBank(),
		DevCardDeck:      deck,
		DevCardDeckCount: len(deck),
		TurnNumber:       0,
		CreatedAt:        time.Now().UTC(),
		PendingDiscards:  []PendingDiscard{},
	}
	seating := make([]string, 0, len(seats))
	for _, s := range seats {
		gs.Players = append(gs.Players, &PlayerState{
			ID:          s.PlayerID,
			UserID:      s.UserID,
			Username:    s.Username,
			Color:       s.Color,
			Settlements: []string{},
			Cities:      []string{},
			Roads:       []string{},
			DevCards:    []DevCard{},
			IsConnected: true,
		})
		seating = append(seating, s.PlayerID)
	}
	gs.RollForOrder = &RollForOrderState{
		Seating: seating,
		Rolls:   map[string]int{},
	}
	return gs
}

// Player returns the player with the given ID, or nil.
func (gs *GameState) Player(id string) *PlayerState {
	for _, p := range gs.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// CurrentPlayer returns the active player, or nil before turn order is
// established.
func (gs *GameState) CurrentPlayer() *PlayerState {
	if len(gs.TurnOrder) == 0 {
		return nil
	}
	return gs.Player(gs.TurnOrder[gs.CurrentPlayerIndex])
}

// requireCurrent gates an action on it being the given player's turn.
func (gs *GameState) requireCurrent(playerID string) (*PlayerState, error) {
	p := gs.Player(playerID)
	if p == nil {
		return nil, ruleErr(CodeNotInGame, "player %s is not in this game", playerID)
	}
	cur := gs.CurrentPlayer()
	if cur == nil || cur.ID != playerID {
		return nil, ruleErr(CodeNotYourTurn, "it is not your turn")
	}
	return p, nil
}

// requirePlaying gates an action on phase == playing and the given
// turn phase.
func (gs *GameState) requirePlaying(turnPhase TurnPhase) error {
	if gs.Phase != PhasePlaying {
		return ruleErr(CodeWrongPhase, "action requires the playing phase, game is in %s", gs.Phase)
	}
	if gs.TurnPhase != turnPhase {
		return ruleErr(CodeWrongTurnPhase, "action requires turn phase %s, currently %s", turnPhase, gs.TurnPhase)
	}
	return nil
}

// Clone returns a deep copy. The session actor applies every command to
// a clone and swaps it in on success, so a failed command never leaves
// partial mutations behind.
func (gs *GameState) Clone() *GameState {
	c := *gs
	if gs.Board != nil {
		c.Board = gs.Board.clone()
	}
	c.Players = make([]*PlayerState, len(gs.Players))
	for i, p := range gs.Players {
		c.Players[i] = p.clone()
	}
	c.TurnOrder = append([]string(nil), gs.TurnOrder...)
	c.DevCardDeck = append([]DevCardType(nil), gs.DevCardDeck...)
	c.PendingDiscards = append([]PendingDiscard{}, gs.PendingDiscards...)
	if gs.LastDiceRoll != nil {
		roll := *gs.LastDiceRoll
		c.LastDiceRoll = &roll
	}
	if gs.RollForOrder != nil {
		r := RollForOrderState{
			Seating: append([]string(nil), gs.RollForOrder.Seating...),
			Rolls:   make(map[string]int, len(gs.RollForOrder.Rolls)),
		}
		for k, v := range gs.RollForOrder.Rolls {
			r.Rolls[k] = v
		}
		c.RollForOrder = &r
	}
	if gs.Setup != nil {
		s := SetupState{
			SettlementPlaced: gs.Setup.SettlementPlaced,
			LastSettlement:   make(map[string]string, len(gs.Setup.LastSettlement)),
		}
		for k, v := range gs.Setup.LastSettlement {
			s.LastSettlement[k] = v
		}
		c.Setup = &s
	}
	if gs.ActiveTrade != nil {
		tr := *gs.ActiveTrade
		c.ActiveTrade = &tr
	}
	if gs.StartedAt != nil {
		t := *gs.StartedAt
		c.StartedAt = &t
	}
	if gs.FinishedAt != nil {
		t := *gs.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}

// RedactFor returns a snapshot safe to send to the given player: the
// draw pile order is removed and other players' hand composition is
// hidden behind counts. Pass an empty ID for a spectator view.
func (gs *GameState) RedactFor(playerID string) *GameState {
	c := gs.Clone()
	c.DevCardDeck = nil
	for _, p := range c.Players {
		p.ResourceTotal = p.Resources.Total()
		p.DevCardCount = len(p.DevCards)
		if p.ID != playerID {
			p.Resources = ResourceCount{}
			p.DevCards = []DevCard{}
		}
	}
	return c
}

// finish marks the game won by the given player.
func (gs *GameState) finish(winnerID string) {
	now := time.Now().UTC()
	gs.WinnerID = winnerID
	gs.Status = StatusFinished
	gs.Phase = PhaseFinished
	gs.FinishedAt = &now
}

// checkWinner declares a winner if any player's total VP (public plus
// hidden victory-point cards) has reached the target. The active player
// is checked first: hidden VP cards can only tip a player over through
// an action on their own turn, but public VP swings (a lost award) can
// crown another player mid-turn.
func (gs *GameState) checkWinner() []Event {
	if gs.WinnerID != "" {
		return nil
	}
	ordered := make([]*PlayerState, 0, len(gs.Players))
	if cur := gs.CurrentPlayer(); cur != nil {
		ordered = append(ordered, cur)
	}
	for _, p := range gs.Players {
		if len(ordered) > 0 && p.ID == ordered[0].ID {
			continue
		}
		ordered = append(ordered, p)
	}
	for _, p := range ordered {
		if p.TotalVictoryPoints() >= VictoryPointsToWin {
			gs.finish(p.ID)
			return []Event{broadcast(EventGameEnded, map[string]any{
				"winner_id":      p.ID,
				"victory_points": p.TotalVictoryPoints(),
			})}
		}
	}
	return nil
}
