// Package lobby manages pre-game lobbies: creation and joining by
// code, color assignment, ready flags, and the host-triggered start
// that hands the seated players to the session manager.
package lobby

import (
	"crypto/rand"
	"errors"
	"sync"
	"time"

	"github.com/opencatan/server/pkg/catan"
)

var (
	ErrCodeUnknown    = errors.New("no lobby with that code")
	ErrLobbyFull      = errors.New("lobby is full")
	ErrColorTaken     = errors.New("color already taken")
	ErrAlreadyStarted = errors.New("lobby has already started")
	ErrNotHost        = errors.New("only the host can do that")
	ErrNotInLobby     = errors.New("you are not in a lobby")
	ErrNotReady       = errors.New("every player must be ready")
	ErrTooFewPlayers  = errors.New("need at least 2 players to start")
	ErrInvalidSize    = errors.New("lobby size must be between 2 and 4")
)

// Status is a lobby's lifecycle status.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusStarting Status = "starting"
	StatusStarted  Status = "started"
)

// CountdownSeconds is the delay between the start command and handoff.
const CountdownSeconds = 3

// Player is one seat in a lobby.
type Player struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Color    catan.Color `json:"color"`
	IsReady  bool        `json:"is_ready"`
	IsHost   bool        `json:"is_host"`
}

// Lobby is one pre-game lobby.
type Lobby struct {
	Code       string    `json:"code"`
	HostID     string    `json:"host_id"`
	MaxPlayers int       `json:"max_players"`
	Status     Status    `json:"status"`
	Players    []*Player `json:"players"`
	CreatedAt  time.Time `json:"created_at"`
}

func (l *Lobby) player(id string) *Player {
	for _, p := range l.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (l *Lobby) freeColor() (catan.Color, bool) {
	taken := map[catan.Color]bool{}
	for _, p := range l.Players {
		taken[p.Color] = true
	}
	for _, c := range catan.AllColors() {
		if !taken[c] {
			return c, true
		}
	}
	return "", false
}

// snapshot returns a deep copy safe to hand out after the lock drops.
func (l *Lobby) snapshot() *Lobby {
	c := *l
	c.Players = make([]*Player, len(l.Players))
	for i, p := range l.Players {
		pc := *p
		c.Players[i] = &pc
	}
	return &c
}

// Excludes visually ambiguous characters (I, O, 0, 1).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const codeLength = 6

// Manager holds all open lobbies.
type Manager struct {
	mu          sync.RWMutex
	lobbies     map[string]*Lobby
	playerLobby map[string]string // player ID -> code
}

// NewManager creates an empty lobby Manager.
func NewManager() *Manager {
	return &Manager{
		lobbies:     make(map[string]*Lobby),
		playerLobby: make(map[string]string),
	}
}

func (m *Manager) newCode() string {
	for {
		b := make([]byte, codeLength)
		if _, err := rand.Read(b); err != nil {
			panic("lobby: crypto/rand unavailable: " + err.Error())
		}
		for i := range b {
			b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
		}
		code := string(b)
		if _, exists := m.lobbies[code]; !exists {
			return code
		}
	}
}

// Create opens a new lobby with the given host.
func (m *Manager) Create(hostID, username string, maxPlayers int) (*Lobby, error) {
	if maxPlayers < 2 || maxPlayers > 4 {
		return nil, ErrInvalidSize
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeLocked(hostID)

	l := &Lobby{
		Code:       m.newCode(),
		HostID:     hostID,
		MaxPlayers: maxPlayers,
		Status:     StatusWaiting,
		CreatedAt:  time.Now().UTC(),
	}
	l.Players = append(l.Players, &Player{
		ID:       hostID,
		Username: username,
		Color:    catan.AllColors()[0],
		IsHost:   true,
	})
	m.lobbies[l.Code] = l
	m.playerLobby[hostID] = l.Code
	return l.snapshot(), nil
}

// Join adds a player to the lobby with the given code. Joining a lobby
// the player is already in is a reconnect: the current state is
// returned unchanged.
func (m *Manager) Join(code, playerID, username string) (*Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.lobbies[code]
	if !ok {
		return nil, ErrCodeUnknown
	}
	if p := l.player(playerID); p != nil {
		return l.snapshot(), nil
	}
	if l.Status != StatusWaiting {
		return nil, ErrAlreadyStarted
	}
	if len(l.Players) >= l.MaxPlayers {
		return nil, ErrLobbyFull
	}
	color, ok := l.freeColor()
	if !ok {
		return nil, ErrLobbyFull
	}

	m.removeLocked(playerID)
	l.Players = append(l.Players, &Player{
		ID:       playerID,
		Username: username,
		Color:    color,
	})
	m.playerLobby[playerID] = code
	return l.snapshot(), nil
}

// Leave removes a player from their lobby. If the host leaves, the
// earliest remaining player is promoted; an emptied lobby is deleted.
// Returns the updated lobby, or nil if it was deleted or the player
// was not in one.
func (m *Manager) Leave(playerID string) *Lobby {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.removeLocked(playerID)
	if l == nil {
		return nil
	}
	return l.snapshot()
}

// removeLocked takes a player out of whatever lobby holds them and
// returns that lobby, or nil if it emptied out (and was deleted) or the
// player was not in one.
func (m *Manager) removeLocked(playerID string) *Lobby {
	code, ok := m.playerLobby[playerID]
	if !ok {
		return nil
	}
	delete(m.playerLobby, playerID)
	l, ok := m.lobbies[code]
	if !ok {
		return nil
	}
	for i, p := range l.Players {
		if p.ID == playerID {
			l.Players = append(l.Players[:i], l.Players[i+1:]...)
			break
		}
	}
	if len(l.Players) == 0 {
		delete(m.lobbies, code)
		return nil
	}
	if l.HostID == playerID {
		l.HostID = l.Players[0].ID
		l.Players[0].IsHost = true
		l.Players[0].IsReady = false
	}
	return l
}

// SetColor changes a player's color if it is free.
func (m *Manager) SetColor(playerID string, color catan.Color) (*Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, p, err := m.memberLocked(playerID)
	if err != nil {
		return nil, err
	}
	if l.Status != StatusWaiting {
		return nil, ErrAlreadyStarted
	}
	for _, other := range l.Players {
		if other.ID != playerID && other.Color == color {
			return nil, ErrColorTaken
		}
	}
	p.Color = color
	return l.snapshot(), nil
}

// SetReady flips a player's ready flag.
func (m *Manager) SetReady(playerID string, ready bool) (*Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, p, err := m.memberLocked(playerID)
	if err != nil {
		return nil, err
	}
	if l.Status != StatusWaiting {
		return nil, ErrAlreadyStarted
	}
	p.IsReady = ready
	return l.snapshot(), nil
}

// StartGame begins the start countdown. Host only; needs at least two
// players and every non-host player ready.
func (m *Manager) StartGame(hostID string) (*Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, _, err := m.memberLocked(hostID)
	if err != nil {
		return nil, err
	}
	if l.HostID != hostID {
		return nil, ErrNotHost
	}
	if l.Status != StatusWaiting {
		return nil, ErrAlreadyStarted
	}
	if len(l.Players) < 2 {
		return nil, ErrTooFewPlayers
	}
	for _, p := range l.Players {
		if !p.IsHost && !p.IsReady {
			return nil, ErrNotReady
		}
	}
	l.Status = StatusStarting
	return l.snapshot(), nil
}

// CompleteStart finishes the countdown: the lobby is marked started,
// its players are unbound from the lobby index, and the seats are
// returned for the session manager to build the game. Returns
// ErrCodeUnknown if the lobby dissolved during the countdown.
func (m *Manager) CompleteStart(code string) ([]catan.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.lobbies[code]
	if !ok {
		return nil, ErrCodeUnknown
	}
	if l.Status != StatusStarting {
		return nil, ErrAlreadyStarted
	}
	l.Status = StatusStarted

	seats := make([]catan.Seat, 0, len(l.Players))
	for _, p := range l.Players {
		seats = append(seats, catan.Seat{
			PlayerID: p.ID,
			UserID:   p.ID,
			Username: p.Username,
			Color:    p.Color,
		})
		delete(m.playerLobby, p.ID)
	}
	delete(m.lobbies, code)
	return seats, nil
}

// Get returns a snapshot of the lobby with the given code.
func (m *Manager) Get(code string) (*Lobby, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.lobbies[code]
	if !ok {
		return nil, ErrCodeUnknown
	}
	return l.snapshot(), nil
}

// LobbyOf returns the code of the lobby holding the player, if any.
func (m *Manager) LobbyOf(playerID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	code, ok := m.playerLobby[playerID]
	return code, ok
}

func (m *Manager) memberLocked(playerID string) (*Lobby, *Player, error) {
	code, ok := m.playerLobby[playerID]
	if !ok {
		return nil, nil, ErrNotInLobby
	}
	l := m.lobbies[code]
	p := l.player(playerID)
	if p == nil {
		return nil, nil, ErrNotInLobby
	}
	return l, p, nil
}
