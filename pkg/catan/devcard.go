package catan

// DevCardType is one of the five development card variants.
type DevCardType string

const (
	CardKnight       DevCardType = "knight"
	CardVictoryPoint DevCardType = "victory_point"
	CardRoadBuilding DevCardType = "road_building"
	CardYearOfPlenty DevCardType = "year_of_plenty"
	CardMonopoly     DevCardType = "monopoly"
)

// DeckSize is the total number of development cards.
const DeckSize = 25

// DevCard is a development card held by a player.
type DevCard struct {
	ID              string      `json:"id"`
	Type            DevCardType `json:"type"`
	PurchasedOnTurn int         `json:"purchased_on_turn"`
	Played          bool        `json:"played"`
}

// NewDeck returns the canonical 25-card deck in fixed order
// (14 knights, 5 victory points, 2 each of the progress cards).
// Callers shuffle it through the game's RNG.
func NewDeck() []DevCardType {
	deck := make([]DevCardType, 0, DeckSize)
	for i := 0; i < 14; i++ {
		deck = append(deck, CardKnight)
	}
	for i := 0; i < 5; i++ {
		deck = append(deck, CardVictoryPoint)
	}
	for i := 0; i < 2; i++ {
		deck = append(deck, CardRoadBuilding, CardYearOfPlenty, CardMonopoly)
	}
	return deck
}
