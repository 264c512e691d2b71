// Package session runs live games. Each game is owned by a single
// actor goroutine; commands are applied to a clone of the state and
// swapped in on success, and resulting events fan out to per-subscriber
// bounded feeds.
package session

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opencatan/server/internal/repository"
	"github.com/opencatan/server/pkg/catan"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("a game with that code already exists")
	ErrBusy         = errors.New("game is busy, try again")
	ErrStopped      = errors.New("game has shut down")
)

// Options configures the session Manager.
type Options struct {
	Store        repository.Store
	TurnTimeout  time.Duration // 0 disables the turn timer
	AbandonAfter time.Duration
}

// Manager holds all running game actors and routes players to them.
type Manager struct {
	mu      sync.RWMutex
	games   map[string]*GameActor // code -> actor
	players map[string]string     // player ID -> code
	opts    Options
}

// NewManager creates a session Manager.
func NewManager(opts Options) *Manager {
	if opts.Store == nil {
		opts.Store = repository.NoopStore{}
	}
	if opts.AbandonAfter <= 0 {
		opts.AbandonAfter = 10 * time.Minute
	}
	return &Manager{
		games:   make(map[string]*GameActor),
		players: make(map[string]string),
		opts:    opts,
	}
}

// newRNG returns a math/rand generator seeded from crypto/rand, one
// per game so board layouts and shuffles are independent.
func newRNG() catan.RNG {
	var seed [8]byte
	if _, err := crand.Read(seed[:]); err != nil {
		panic("session: crypto/rand unavailable: " + err.Error())
	}
	return rand.New(rand.NewSource(int64(binary.BigEndian.Uint64(seed[:]))))
}

// Create builds a new game for the given seats and starts its actor.
func (m *Manager) Create(code string, seats []catan.Seat) (*GameActor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.games[code]; exists {
		return nil, ErrGameExists
	}
	gs := catan.NewGame(uuid.NewString(), code, seats, newRNG())
	a := newActor(gs, newRNG(), m.opts, m.remove)
	m.games[code] = a
	for _, s := range seats {
		m.players[s.PlayerID] = code
	}
	return a, nil
}

// Get returns the actor for the given game code.
func (m *Manager) Get(code string) (*GameActor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.games[code]
	return a, ok
}

// ForPlayer returns the actor of the game holding the given player.
func (m *Manager) ForPlayer(playerID string) (*GameActor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	code, ok := m.players[playerID]
	if !ok {
		return nil, false
	}
	a, ok := m.games[code]
	return a, ok
}

func (m *Manager) remove(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, code)
	for pid, c := range m.players {
		if c == code {
			delete(m.players, pid)
		}
	}
}

// Shutdown stops every running game.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	actors := make([]*GameActor, 0, len(m.games))
	for _, a := range m.games {
		actors = append(actors, a)
	}
	m.mu.Unlock()
	for _, a := range actors {
		a.Stop()
	}
}
