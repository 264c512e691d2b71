package catan

import (
	"time"
)

// TradeExpiry is how long a proposal stays open.
const TradeExpiry = 60 * time.Second

// ProposeTrade opens a trade proposal from the active player. At most
// one proposal is active per game; targetID may be empty to offer the
// trade to every opponent.
func ProposeTrade(gs *GameState, playerID, tradeID, targetID string, offer, request ResourceCount) ([]Event, error) {
	if err := gs.requirePlaying(TurnMain); err != nil {
		return nil, err
	}
	p, err := gs.requireCurrent(playerID)
	if err != nil {
		return nil, err
	}
	if gs.ActiveTrade != nil {
		return nil, ruleErr(CodeInvalidPayload, "a trade is already pending")
	}
	if !offer.NonNegative() || !request.NonNegative() {
		return nil, ruleErr(CodeInvalidPayload, "trade amounts must be non-negative")
	}
	if offer.Total() == 0 && request.Total() == 0 {
		return nil, ruleErr(CodeInvalidPayload, "trade must move at least one card")
	}
	if !p.Resources.Covers(offer) {
		return nil, ruleErr(CodeCannotAfford, "you do not hold the offered resources")
	}
	if targetID != "" {
		if targetID == playerID {
			return nil, ruleErr(CodeInvalidPayload, "cannot trade with yourself")
		}
		if gs.Player(targetID) == nil {
			return nil, ruleErr(CodeNotInGame, "player %s is not in this game", targetID)
		}
	}

	now := time.Now().UTC()
	gs.ActiveTrade = &TradeOffer{
		ID:         tradeID,
		ProposerID: playerID,
		TargetID:   targetID,
		Offer:      offer,
		Request:    request,
		CreatedAt:  now,
		ExpiresAt:  now.Add(TradeExpiry),
	}

	return []Event{broadcast(EventTradeProposed, map[string]any{
		"trade": gs.ActiveTrade,
	})}, nil
}

// AcceptTrade completes the active trade: the accepter must afford the
// requested side, the transfer is atomic, and the proposal is cleared.
// A proposer who can no longer afford the offer gets the trade
// cancelled instead of completed.
func AcceptTrade(gs *GameState, playerID, tradeID string) ([]Event, error) {
	trade, err := activeTrade(gs, tradeID)
	if err != nil {
		return nil, err
	}
	if playerID == trade.ProposerID {
		return nil, ruleErr(CodeInvalidPayload, "you cannot accept your own trade")
	}
	if trade.TargetID != "" && trade.TargetID != playerID {
		return nil, ruleErr(CodeInvalidPayload, "this trade was offered to another player")
	}
	accepter := gs.Player(playerID)
	if accepter == nil {
		return nil, ruleErr(CodeNotInGame, "player %s is not in this game", playerID)
	}
	proposer := gs.Player(trade.ProposerID)

	// The proposer may have spent the offered cards since proposing.
	// The trade is dead either way, so clear it now instead of leaving
	// it to expire.
	if !proposer.Resources.Covers(trade.Offer) {
		gs.ActiveTrade = nil
		return []Event{broadcast(EventTradeCancelled, map[string]any{
			"trade_id": trade.ID,
			"reason":   "proposer_cannot_afford",
		})}, nil
	}
	if !accepter.Resources.Covers(trade.Request) {
		return nil, ruleErr(CodeCannotAfford, "you cannot afford the requested resources")
	}

	proposer.Resources = proposer.Resources.Minus(trade.Offer).Plus(trade.Request)
	accepter.Resources = accepter.Resources.Minus(trade.Request).Plus(trade.Offer)
	gs.ActiveTrade = nil

	return []Event{
		broadcast(EventTradeAccepted, map[string]any{
			"trade_id":    trade.ID,
			"accepter_id": playerID,
		}),
		broadcast(EventTradeCompleted, map[string]any{
			"trade_id":    trade.ID,
			"proposer_id": trade.ProposerID,
			"accepter_id": playerID,
			"offer":       trade.Offer,
			"request":     trade.Request,
		}),
	}, nil
}

// RejectTrade declines the active trade. Any eligible counterparty may
// reject; an open offer stays active until cancelled or expired unless
// every opponent has rejected — for simplicity a single rejection of a
// targeted trade clears it, while rejections of open trades are
// informational.
func RejectTrade(gs *GameState, playerID, tradeID string) ([]Event, error) {
	trade, err := activeTrade(gs, tradeID)
	if err != nil {
		return nil, err
	}
	if playerID == trade.ProposerID {
		return nil, ruleErr(CodeInvalidPayload, "use cancel to withdraw your own trade")
	}
	if trade.TargetID != "" && trade.TargetID != playerID {
		return nil, ruleErr(CodeInvalidPayload, "this trade was offered to another player")
	}

	events := []Event{broadcast(EventTradeRejected, map[string]any{
		"trade_id":    trade.ID,
		"rejecter_id": playerID,
	})}
	if trade.TargetID != "" {
		gs.ActiveTrade = nil
	}
	return events, nil
}

// CancelTrade withdraws the proposer's own active trade.
func CancelTrade(gs *GameState, playerID, tradeID string) ([]Event, error) {
	trade, err := activeTrade(gs, tradeID)
	if err != nil {
		return nil, err
	}
	if playerID != trade.ProposerID {
		return nil, ruleErr(CodeInvalidPayload, "only the proposer can cancel a trade")
	}
	gs.ActiveTrade = nil
	return []Event{broadcast(EventTradeCancelled, map[string]any{
		"trade_id": trade.ID,
		"reason":   "cancelled",
	})}, nil
}

// ExpireTrade clears a trade whose deadline passed. Driven by the
// session actor's timer; a stale ID (already resolved) is a no-op.
func ExpireTrade(gs *GameState, tradeID string, now time.Time) ([]Event, error) {
	if gs.ActiveTrade == nil || gs.ActiveTrade.ID != tradeID {
		return nil, nil
	}
	if now.Before(gs.ActiveTrade.ExpiresAt) {
		return nil, nil
	}
	id := gs.ActiveTrade.ID
	gs.ActiveTrade = nil
	return []Event{broadcast(EventTradeCancelled, map[string]any{
		"trade_id": id,
		"reason":   "expired",
	})}, nil
}

// BankTrade exchanges the player's resources with the bank at the best
// rate the player's ports allow: 4:1 by default, 3:1 with a generic
// port, 2:1 with a matching resource port.
func BankTrade(gs *GameState, playerID string, give, receive Resource) ([]Event, error) {
	if err := gs.requirePlaying(TurnMain); err != nil {
		return nil, err
	}
	p, err := gs.requireCurrent(playerID)
	if err != nil {
		return nil, err
	}
	if !ValidResource(give) || !ValidResource(receive) {
		return nil, ruleErr(CodeInvalidPayload, "bank trade requires valid resources")
	}
	if give == receive {
		return nil, ruleErr(CodeInvalidPayload, "cannot trade a resource for itself")
	}

	rate := gs.Board.TradeRate(p, give)
	if p.Resources.Get(give) < rate {
		return nil, ruleErr(CodeCannotAfford, "a %s trade requires %d %s", receive, rate, give)
	}
	if gs.Bank.Get(receive) < 1 {
		return nil, ruleErr(CodeBankShortage, "the bank has no %s", receive)
	}

	p.Resources.Add(give, -rate)
	gs.Bank.Add(give, rate)
	gs.Bank.Add(receive, -1)
	p.Resources.Add(receive, 1)

	return []Event{broadcast(EventTradeCompleted, map[string]any{
		"player_id": playerID,
		"with_bank": true,
		"gave":      give,
		"gave_n":    rate,
		"received":  receive,
	})}, nil
}

func activeTrade(gs *GameState, tradeID string) (*TradeOffer, error) {
	if gs.Phase != PhasePlaying {
		return nil, ruleErr(CodeWrongPhase, "trading requires the playing phase")
	}
	if gs.ActiveTrade == nil {
		return nil, ruleErr(CodeInvalidPayload, "no trade is pending")
	}
	if tradeID != "" && gs.ActiveTrade.ID != tradeID {
		return nil, ruleErr(CodeInvalidPayload, "trade %s is no longer active", tradeID)
	}
	return gs.ActiveTrade, nil
}
