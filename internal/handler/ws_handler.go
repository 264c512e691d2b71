// Package handler is the WebSocket gateway: it upgrades connections,
// binds them to a stable player identity, and translates wire intents
// into lobby and game commands.
package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/opencatan/server/internal/auth"
	"github.com/opencatan/server/internal/lobby"
	"github.com/opencatan/server/internal/session"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = 54 * time.Second // Must be less than pongWait
	maxMsgSize  = 4096
	sendBufSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS handled by middleware; tighten in production
	},
}

// WSHandler handles WebSocket connections.
type WSHandler struct {
	hub       *Hub
	lobbies   *lobby.Manager
	games     *session.Manager
	tokens    *auth.TokenManager
	countdown time.Duration
}

// NewWSHandler creates a WSHandler.
func NewWSHandler(hub *Hub, lobbies *lobby.Manager, games *session.Manager, tokens *auth.TokenManager) *WSHandler {
	return &WSHandler{
		hub:       hub,
		lobbies:   lobbies,
		games:     games,
		tokens:    tokens,
		countdown: lobby.CountdownSeconds * time.Second,
	}
}

// ServeWS handles GET /ws — upgrades to WebSocket.
// Identity via ?token= query parameter (WebSocket can't send headers);
// a connection without a valid token gets a fresh player ID and token.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	var playerID string
	token := r.URL.Query().Get("token")
	if token != "" {
		if id, err := h.tokens.Validate(token); err == nil {
			playerID = id
		}
	}
	if playerID == "" {
		playerID = uuid.NewString()
		fresh, err := h.tokens.Generate(playerID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to issue player token")
			http.Error(w, `{"error":"could not issue token"}`, http.StatusInternalServerError)
			return
		}
		token = fresh
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &WSConn{
		conn:     conn,
		playerID: playerID,
		send:     make(chan []byte, sendBufSize),
	}
	h.hub.Register(client)

	go h.writePump(client)
	go h.readPump(client)

	client.Send(ServerMessage{Type: "connection:established", Data: map[string]any{
		"player_id": playerID,
		"token":     token,
	}})

	// A returning player is dropped straight back into their game or
	// lobby.
	if actor, ok := h.games.ForPlayer(playerID); ok {
		h.attachGame(client, actor)
		client.Send(h.stateMessage(actor, playerID))
	} else if code, ok := h.lobbies.LobbyOf(playerID); ok {
		if l, err := h.lobbies.Get(code); err == nil {
			client.Send(ServerMessage{Type: "lobby:state", Data: l})
		}
	}

	log.Info().Str("playerId", playerID).Int("total", h.hub.ConnectionCount()).Msg("WebSocket client connected")
}

// readPump reads messages from the WebSocket connection.
func (h *WSHandler) readPump(c *WSConn) {
	defer func() {
		if sub := c.attach(nil); sub != nil {
			sub.Close()
		}
		h.hub.Unregister(c)
		c.conn.Close()
		log.Info().Str("playerId", c.playerID).Msg("WebSocket client disconnected")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("playerId", c.playerID).Msg("WebSocket unexpected close")
			}
			break
		}
		h.dispatch(c, message)
	}
}

// writePump writes messages to the WebSocket connection.
func (h *WSHandler) writePump(c *WSConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Drain queued messages into the same write
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte("\n"))
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
