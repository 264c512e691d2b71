package handler

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/opencatan/server/internal/lobby"
	"github.com/opencatan/server/internal/session"
	"github.com/opencatan/server/pkg/catan"
)

// dispatch routes one client message. Failures never close the
// connection; the submitter gets a scoped error event and everyone
// else sees nothing.
func (h *WSHandler) dispatch(c *WSConn, raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Type == "" {
		h.sendError(c, "connection", catan.CodeInvalidPayload, "malformed message")
		return
	}

	switch msg.Type {
	case "lobby:create":
		var p createLobbyPayload
		if h.decode(c, msg, &p) {
			h.lobbyCreate(c, msg.Type, p)
		}
	case "lobby:join":
		var p joinLobbyPayload
		if h.decode(c, msg, &p) {
			h.lobbyJoin(c, msg.Type, p)
		}
	case "lobby:leave":
		if l := h.lobbies.Leave(c.playerID); l != nil {
			h.broadcastLobby(l)
		}
		c.Send(ServerMessage{Type: "lobby:left"})
	case "lobby:set_color":
		var p setColorPayload
		if h.decode(c, msg, &p) {
			h.lobbyUpdate(c, msg.Type, func() (*lobby.Lobby, error) {
				return h.lobbies.SetColor(c.playerID, catan.Color(p.Color))
			})
		}
	case "lobby:ready", "lobby:set_ready":
		var p setReadyPayload
		if h.decode(c, msg, &p) {
			h.lobbyUpdate(c, msg.Type, func() (*lobby.Lobby, error) {
				return h.lobbies.SetReady(c.playerID, p.Ready)
			})
		}
	case "lobby:start_game", "lobby:start":
		h.lobbyStart(c, msg.Type)

	case "game:roll_for_order":
		h.doGame(c, msg.Type, func(gs *catan.GameState, rng catan.RNG) ([]catan.Event, error) {
			return catan.RollForOrder(gs, c.playerID, rng)
		})
	case "game:roll_dice", "game:roll":
		h.doGame(c, msg.Type, func(gs *catan.GameState, rng catan.RNG) ([]catan.Event, error) {
			return catan.RollDice(gs, c.playerID, rng)
		})
	case "game:end_turn":
		h.doGame(c, msg.Type, func(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
			return catan.EndTurn(gs, c.playerID)
		})
	case "game:request_state":
		actor, ok := h.games.ForPlayer(c.playerID)
		if !ok {
			h.sendError(c, msg.Type, "game_not_found", "you are not in a running game")
			return
		}
		c.Send(h.stateMessage(actor, c.playerID))

	case "build:settlement":
		var p vertexPayload
		if h.decode(c, msg, &p) {
			h.doGame(c, msg.Type, func(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
				if gs.Phase == catan.PhaseSetupFirst || gs.Phase == catan.PhaseSetupSecond {
					return catan.PlaceSetupSettlement(gs, c.playerID, p.VertexID)
				}
				return catan.BuildSettlement(gs, c.playerID, p.VertexID)
			})
		}
	case "build:city":
		var p vertexPayload
		if h.decode(c, msg, &p) {
			h.doGame(c, msg.Type, func(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
				return catan.BuildCity(gs, c.playerID, p.VertexID)
			})
		}
	case "build:road":
		var p edgePayload
		if h.decode(c, msg, &p) {
			h.doGame(c, msg.Type, func(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
				if gs.Phase == catan.PhaseSetupFirst || gs.Phase == catan.PhaseSetupSecond {
					return catan.PlaceSetupRoad(gs, c.playerID, p.EdgeID)
				}
				return catan.BuildRoad(gs, c.playerID, p.EdgeID)
			})
		}

	case "robber:discard":
		var p discardPayload
		if h.decode(c, msg, &p) {
			h.doGame(c, msg.Type, func(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
				return catan.DiscardResources(gs, c.playerID, p.Resources)
			})
		}
	case "robber:move":
		var p hexPayload
		if h.decode(c, msg, &p) {
			h.doGame(c, msg.Type, func(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
				return catan.MoveRobber(gs, c.playerID, p.HexID)
			})
		}
	case "robber:steal":
		var p stealPayload
		if h.decode(c, msg, &p) {
			h.doGame(c, msg.Type, func(gs *catan.GameState, rng catan.RNG) ([]catan.Event, error) {
				return catan.StealResource(gs, c.playerID, p.VictimID, rng)
			})
		}

	case "trade:propose":
		var p proposeTradePayload
		if h.decode(c, msg, &p) {
			tradeID := uuid.NewString()
			h.doGame(c, msg.Type, func(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
				return catan.ProposeTrade(gs, c.playerID, tradeID, p.TargetID, p.Offer, p.Request)
			})
		}
	case "trade:accept":
		var p tradeIDPayload
		if h.decode(c, msg, &p) {
			h.doGame(c, msg.Type, func(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
				return catan.AcceptTrade(gs, c.playerID, p.TradeID)
			})
		}
	case "trade:reject":
		var p tradeIDPayload
		if h.decode(c, msg, &p) {
			h.doGame(c, msg.Type, func(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
				return catan.RejectTrade(gs, c.playerID, p.TradeID)
			})
		}
	case "trade:cancel":
		var p tradeIDPayload
		if h.decode(c, msg, &p) {
			h.doGame(c, msg.Type, func(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
				return catan.CancelTrade(gs, c.playerID, p.TradeID)
			})
		}
	case "trade:bank", "trade:port":
		// Same exchange op either way; the engine charges the best rate
		// the player's ports allow.
		var p bankTradePayload
		if h.decode(c, msg, &p) {
			h.doGame(c, msg.Type, func(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
				return catan.BankTrade(gs, c.playerID, catan.Resource(p.Give), catan.Resource(p.Receive))
			})
		}

	case "build:dev_card", "devcard:buy":
		h.doGame(c, msg.Type, func(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
			return catan.BuyDevCard(gs, c.playerID)
		})
	case "devcard:play_knight":
		h.doGame(c, msg.Type, func(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
			return catan.PlayKnight(gs, c.playerID)
		})
	case "devcard:play_road_building":
		h.doGame(c, msg.Type, func(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
			return catan.PlayRoadBuilding(gs, c.playerID)
		})
	case "devcard:end_road_building":
		h.doGame(c, msg.Type, func(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
			return catan.EndRoadBuilding(gs, c.playerID)
		})
	case "devcard:play_year_of_plenty":
		var p yearOfPlentyPayload
		if h.decode(c, msg, &p) {
			h.doGame(c, msg.Type, func(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
				return catan.PlayYearOfPlenty(gs, c.playerID, catan.Resource(p.First), catan.Resource(p.Second))
			})
		}
	case "devcard:play_monopoly":
		var p monopolyPayload
		if h.decode(c, msg, &p) {
			h.doGame(c, msg.Type, func(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
				return catan.PlayMonopoly(gs, c.playerID, catan.Resource(p.Resource))
			})
		}

	case "chat:send":
		var p chatPayload
		if h.decode(c, msg, &p) {
			h.chatSend(c, msg.Type, p.Message)
		}

	default:
		h.sendError(c, msg.Type, catan.CodeInvalidPayload, "unknown message type")
	}
}

// payload is a client intent payload that can validate itself.
type payload interface {
	validate() error
}

func (h *WSHandler) decode(c *WSConn, msg ClientMessage, v payload) bool {
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, v); err != nil {
			h.sendError(c, msg.Type, catan.CodeInvalidPayload, "malformed payload")
			return false
		}
	}
	if err := v.validate(); err != nil {
		h.sendError(c, msg.Type, catan.CodeInvalidPayload, err.Error())
		return false
	}
	return true
}

func (h *WSHandler) sendError(c *WSConn, msgType, code, message string) {
	c.Send(ServerMessage{Type: errorScope(msgType), Data: map[string]any{
		"code":    code,
		"message": message,
	}})
}

// doGame routes an op to the player's game actor and reports any
// rejection back to the submitter.
func (h *WSHandler) doGame(c *WSConn, msgType string, op session.Op) {
	actor, ok := h.games.ForPlayer(c.playerID)
	if !ok {
		h.sendError(c, msgType, "game_not_found", "you are not in a running game")
		return
	}
	if err := actor.Do(op); err != nil {
		h.sendError(c, msgType, errCode(err), err.Error())
	}
}

func errCode(err error) string {
	var re *catan.RuleError
	if errors.As(err, &re) {
		return re.Code
	}
	switch {
	case errors.Is(err, session.ErrBusy):
		return "busy"
	case errors.Is(err, session.ErrGameNotFound), errors.Is(err, session.ErrStopped):
		return "game_not_found"
	case errors.Is(err, lobby.ErrCodeUnknown):
		return "code_unknown"
	case errors.Is(err, lobby.ErrLobbyFull):
		return "lobby_full"
	case errors.Is(err, lobby.ErrColorTaken):
		return "color_taken"
	case errors.Is(err, lobby.ErrAlreadyStarted):
		return "already_started"
	case errors.Is(err, lobby.ErrNotHost):
		return "not_host"
	case errors.Is(err, lobby.ErrNotReady):
		return "not_ready"
	case errors.Is(err, lobby.ErrNotInLobby):
		return "not_in_lobby"
	case errors.Is(err, lobby.ErrTooFewPlayers):
		return "too_few_players"
	case errors.Is(err, lobby.ErrInvalidSize):
		return catan.CodeInvalidPayload
	}
	return catan.CodeInternal
}

func (h *WSHandler) lobbyCreate(c *WSConn, msgType string, p createLobbyPayload) {
	l, err := h.lobbies.Create(c.playerID, p.Username, p.MaxPlayers)
	if err != nil {
		h.sendError(c, msgType, errCode(err), err.Error())
		return
	}
	h.broadcastLobby(l)
}

func (h *WSHandler) lobbyJoin(c *WSConn, msgType string, p joinLobbyPayload) {
	l, err := h.lobbies.Join(p.Code, c.playerID, p.Username)
	if err != nil {
		h.sendError(c, msgType, errCode(err), err.Error())
		return
	}
	h.broadcastLobby(l)
}

func (h *WSHandler) lobbyUpdate(c *WSConn, msgType string, fn func() (*lobby.Lobby, error)) {
	l, err := fn()
	if err != nil {
		h.sendError(c, msgType, errCode(err), err.Error())
		return
	}
	h.broadcastLobby(l)
}

func (h *WSHandler) lobbyStart(c *WSConn, msgType string) {
	l, err := h.lobbies.StartGame(c.playerID)
	if err != nil {
		h.sendError(c, msgType, errCode(err), err.Error())
		return
	}
	countdown := ServerMessage{Type: "lobby:countdown", Data: map[string]any{
		"code":    l.Code,
		"seconds": int(h.countdown / time.Second),
	}}
	for _, p := range l.Players {
		h.hub.SendToPlayer(p.ID, countdown)
	}
	code := l.Code
	time.AfterFunc(h.countdown, func() { h.launchGame(code) })
}

// launchGame runs after the start countdown: the lobby hands over its
// seats, the game actor spins up, and every seated player gets the
// started event plus their own redacted snapshot.
func (h *WSHandler) launchGame(code string) {
	seats, err := h.lobbies.CompleteStart(code)
	if err != nil {
		log.Warn().Err(err).Str("code", code).Msg("Lobby dissolved before game start")
		return
	}
	actor, err := h.games.Create(code, seats)
	if err != nil {
		log.Error().Err(err).Str("code", code).Msg("Failed to create game")
		return
	}
	for _, seat := range seats {
		for _, conn := range h.hub.Connections(seat.PlayerID) {
			h.attachGame(conn, actor)
		}
		h.hub.SendToPlayer(seat.PlayerID, ServerMessage{
			Type:   catan.EventGameStarted,
			GameID: code,
			Data:   map[string]any{"code": code},
		})
		h.hub.SendToPlayer(seat.PlayerID, h.stateMessage(actor, seat.PlayerID))
	}
	log.Info().Str("code", code).Int("players", len(seats)).Msg("Game started")
}

func (h *WSHandler) stateMessage(actor *session.GameActor, playerID string) ServerMessage {
	return ServerMessage{Type: "game:state", GameID: actor.Code(), Data: actor.Snapshot(playerID)}
}

// attachGame subscribes a connection to its game's event feed.
func (h *WSHandler) attachGame(c *WSConn, actor *session.GameActor) {
	sub := actor.Subscribe(c.playerID)
	if old := c.attach(sub); old != nil {
		old.Close()
	}
	go h.pumpEvents(c, actor, sub)
}

// pumpEvents forwards game events to the connection. A lagged feed
// means events were dropped; the client gets a fresh snapshot so it
// can resynchronize.
func (h *WSHandler) pumpEvents(c *WSConn, actor *session.GameActor, sub *session.Subscription) {
	for ev := range sub.Events() {
		if sub.Lagged() {
			c.Send(h.stateMessage(actor, c.playerID))
		}
		c.Send(ServerMessage{Type: ev.Type, GameID: actor.Code(), Data: ev.Data})
	}
}

func (h *WSHandler) broadcastLobby(l *lobby.Lobby) {
	msg := ServerMessage{Type: "lobby:state", Data: l}
	for _, p := range l.Players {
		h.hub.SendToPlayer(p.ID, msg)
	}
}

// chatSend relays a chat line to the sender's game, or to their lobby
// when no game is running. Game chat flows through the actor so it is
// ordered with game events.
func (h *WSHandler) chatSend(c *WSConn, msgType, message string) {
	now := time.Now().UTC()
	if actor, ok := h.games.ForPlayer(c.playerID); ok {
		if err := actor.Do(func(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
			p := gs.Player(c.playerID)
			if p == nil {
				return nil, &catan.RuleError{Code: catan.CodeNotInGame, Message: "you are not seated in this game"}
			}
			return []catan.Event{{Type: "chat:message", Data: map[string]any{
				"player_id": p.ID,
				"username":  p.Username,
				"message":   message,
				"sent_at":   now,
			}}}, nil
		}); err != nil {
			h.sendError(c, msgType, errCode(err), err.Error())
		}
		return
	}
	code, ok := h.lobbies.LobbyOf(c.playerID)
	if !ok {
		h.sendError(c, msgType, "not_in_lobby", "join a lobby or game before chatting")
		return
	}
	l, err := h.lobbies.Get(code)
	if err != nil {
		h.sendError(c, msgType, errCode(err), err.Error())
		return
	}
	var username string
	for _, p := range l.Players {
		if p.ID == c.playerID {
			username = p.Username
		}
	}
	msg := ServerMessage{Type: "chat:message", Data: map[string]any{
		"player_id": c.playerID,
		"username":  username,
		"message":   message,
		"sent_at":   now,
	}}
	for _, p := range l.Players {
		h.hub.SendToPlayer(p.ID, msg)
	}
}
