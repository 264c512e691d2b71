package catan

// Color is a player color, unique within a game.
type Color string

const (
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorOrange Color = "orange"
	ColorWhite  Color = "white"
)

// AllColors returns the assignable colors in default order.
func AllColors() []Color {
	return []Color{ColorRed, ColorBlue, ColorOrange, ColorWhite}
}

// ValidColor reports whether c is an assignable color.
func ValidColor(c Color) bool {
	switch c {
	case ColorRed, ColorBlue, ColorOrange, ColorWhite:
		return true
	}
	return false
}

// Piece limits per player.
const (
	MaxSettlements = 5
	MaxCities      = 4
	MaxRoads       = 15
)

// PlayerState is one player's complete state within a game. Players are
// never removed mid-game; a disconnected player keeps all placements.
type PlayerState struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Color    Color  `json:"color"`

	Resources ResourceCount `json:"resources"`
	DevCards  []DevCard     `json:"dev_cards"`

	Settlements []string `json:"settlements"` // vertex IDs
	Cities      []string `json:"cities"`      // vertex IDs
	Roads       []string `json:"roads"`       // edge IDs

	KnightsPlayed       int  `json:"knights_played"`
	LongestRoadLength   int  `json:"longest_road_length"`
	HasLongestRoad      bool `json:"has_longest_road"`
	HasLargestArmy      bool `json:"has_largest_army"`
	PublicVictoryPoints int  `json:"public_victory_points"`
	IsConnected         bool `json:"is_connected"`

	// LastDevCardPlayTurn enforces the one-dev-card-per-turn limit.
	// Zero means no card has been played yet.
	LastDevCardPlayTurn int `json:"last_dev_card_play_turn"`

	// Derived counts, populated on every snapshot so redacted views
	// (which omit hand composition) still show hand sizes.
	ResourceTotal int `json:"resource_total"`
	DevCardCount  int `json:"dev_card_count"`
}

// HiddenVictoryPoints returns the VP from victory-point cards in hand.
// These count toward the win check but are not public until victory.
func (p *PlayerState) HiddenVictoryPoints() int {
	n := 0
	for _, c := range p.DevCards {
		if c.Type == CardVictoryPoint {
			n++
		}
	}
	return n
}

// TotalVictoryPoints is public VP plus hidden VP cards.
func (p *PlayerState) TotalVictoryPoints() int {
	return p.PublicVictoryPoints + p.HiddenVictoryPoints()
}

// HasPlayedDevCardOnTurn reports whether the player already played a
// development card on the given turn. One non-VP card per turn.
func (p *PlayerState) HasPlayedDevCardOnTurn(turn int) bool {
	return turn != 0 && p.LastDevCardPlayTurn == turn
}

// playableCard returns the index of an unplayed card of the given type
// purchased before the current turn, or -1.
func (p *PlayerState) playableCard(cardType DevCardType, currentTurn int) int {
	for i, c := range p.DevCards {
		if c.Type == cardType && !c.Played && c.PurchasedOnTurn < currentTurn {
			return i
		}
	}
	return -1
}

// clone returns a deep copy of the player.
func (p *PlayerState) clone() *PlayerState {
	c := *p
	c.DevCards = append([]DevCard(nil), p.DevCards...)
	c.Settlements = append([]string(nil), p.Settlements...)
	c.Cities = append([]string(nil), p.Cities...)
	c.Roads = append([]string(nil), p.Roads...)
	return &c
}
