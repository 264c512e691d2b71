package catan

// Event names emitted by the engine. The session actor fans these out
// to subscribers; events with Recipients set are delivered only to
// those players.
const (
	EventGameStarted        = "game:started"
	EventTurnChanged        = "game:turn_changed"
	EventPhaseChanged       = "game:phase_changed"
	EventGameEnded          = "game:ended"
	EventRollForOrderResult = "game:roll_for_order_result"

	EventDiceRolled           = "dice:rolled"
	EventResourcesDistributed = "dice:resources_distributed"

	EventSettlementPlaced = "build:settlement_placed"
	EventCityPlaced       = "build:city_placed"
	EventRoadPlaced       = "build:road_placed"

	EventRobberActivated = "robber:activated"
	EventRobberMoved     = "robber:moved"
	EventRobberSteal     = "robber:steal"
	EventDiscardRequired = "robber:discard_required"
	EventPlayerDiscarded = "robber:player_discarded"

	EventTradeProposed  = "trade:proposed"
	EventTradeAccepted  = "trade:accepted"
	EventTradeRejected  = "trade:rejected"
	EventTradeCancelled = "trade:cancelled"
	EventTradeCompleted = "trade:completed"

	EventDevCardPurchased = "devcard:purchased"
	EventDevCardPlayed    = "devcard:played"

	EventLongestRoad = "achievement:longest_road"
	EventLargestArmy = "achievement:largest_army"

	EventPlayerDisconnected = "player:disconnected"
	EventPlayerReconnected  = "player:reconnected"
)

// Event is a game event produced by an engine operation. Empty
// Recipients means broadcast to every subscriber of the game.
type Event struct {
	Type       string   `json:"type"`
	Data       any      `json:"data"`
	Recipients []string `json:"-"`
}

func broadcast(eventType string, data any) Event {
	return Event{Type: eventType, Data: data}
}

func private(eventType string, data any, playerIDs ...string) Event {
	return Event{Type: eventType, Data: data, Recipients: playerIDs}
}
