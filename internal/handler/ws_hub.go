package handler

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/opencatan/server/internal/session"
)

// ServerMessage is the envelope for all messages sent to clients.
type ServerMessage struct {
	Type   string `json:"type"`
	GameID string `json:"game_id,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ClientMessage is the envelope for messages sent from clients.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// WSConn wraps a WebSocket connection with its player identity and,
// once a game is running, the game event subscription feeding it.
type WSConn struct {
	conn     *websocket.Conn
	playerID string
	send     chan []byte

	mu  sync.Mutex
	sub *session.Subscription
}

// Send queues a message on the connection, dropping it if the buffer
// is full.
func (c *WSConn) Send(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("type", msg.Type).Msg("Failed to marshal WebSocket message")
		return
	}
	select {
	case c.send <- data:
	default:
		log.Warn().Str("playerId", c.playerID).Str("type", msg.Type).Msg("Dropping WebSocket message, buffer full")
	}
}

// attach replaces the connection's game subscription.
func (c *WSConn) attach(sub *session.Subscription) *session.Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.sub
	c.sub = sub
	return old
}

// Hub tracks live WebSocket connections by player.
type Hub struct {
	mu      sync.RWMutex
	conns   map[*WSConn]bool
	players map[string]map[*WSConn]bool // player ID -> set of connections
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		conns:   make(map[*WSConn]bool),
		players: make(map[string]map[*WSConn]bool),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = true
	if h.players[c.playerID] == nil {
		h.players[c.playerID] = make(map[*WSConn]bool)
	}
	h.players[c.playerID][c] = true
}

// Unregister removes a connection from the hub and closes its send
// channel.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.conns[c] {
		return
	}
	delete(h.conns, c)
	if set := h.players[c.playerID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.players, c.playerID)
		}
	}
	close(c.send)
}

// SendToPlayer queues a message on every connection the player holds.
func (h *Hub) SendToPlayer(playerID string, msg ServerMessage) {
	h.mu.RLock()
	conns := make([]*WSConn, 0, len(h.players[playerID]))
	for c := range h.players[playerID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	for _, c := range conns {
		c.Send(msg)
	}
}

// Connections returns the live connections for a player.
func (h *Hub) Connections(playerID string) []*WSConn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns := make([]*WSConn, 0, len(h.players[playerID]))
	for c := range h.players[playerID] {
		conns = append(conns, c)
	}
	return conns
}

// ConnectionCount returns the total number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
