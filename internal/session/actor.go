package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/opencatan/server/internal/repository"
	"github.com/opencatan/server/pkg/catan"
)

const (
	commandQueueSize = 64
	subscriberBuffer = 64
)

// Op is a command applied to a game's state. It runs on the game's own
// goroutine against a clone; the clone is swapped in only on success,
// so a failed op never leaves partial mutations behind.
type Op func(gs *catan.GameState, rng catan.RNG) ([]catan.Event, error)

type command struct {
	op    Op
	reply chan error
}

// GameActor owns one game's state. All reads and writes flow through
// its command queue and run on a single goroutine.
type GameActor struct {
	id   string
	code string

	commands chan command
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	rng   catan.RNG
	state *catan.GameState
	snap  atomic.Pointer[catan.GameState]

	subMu sync.RWMutex
	subs  map[*Subscription]struct{}

	store        repository.Store
	turnTimeout  time.Duration
	abandonAfter time.Duration
	onStop       func(code string)

	tradeTimer   *time.Timer
	tradeTimerID string
	turnTimer    *time.Timer
	turnKey      string
	abandonTimer *time.Timer
}

func newActor(gs *catan.GameState, rng catan.RNG, opts Options, onStop func(code string)) *GameActor {
	a := &GameActor{
		id:           gs.ID,
		code:         gs.Code,
		commands:     make(chan command, commandQueueSize),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
		rng:          rng,
		state:        gs,
		subs:         make(map[*Subscription]struct{}),
		store:        opts.Store,
		turnTimeout:  opts.TurnTimeout,
		abandonAfter: opts.AbandonAfter,
		onStop:       onStop,
	}
	a.snap.Store(gs)
	go a.run()
	return a
}

// ID returns the game's unique ID.
func (a *GameActor) ID() string { return a.id }

// Code returns the game's join code.
func (a *GameActor) Code() string { return a.code }

// Do applies an op to the game. It returns ErrBusy without waiting if
// the command queue is full, and ErrStopped once the actor has shut
// down. Any other error comes from the op itself and means the state
// was not changed.
func (a *GameActor) Do(op Op) error {
	cmd := command{op: op, reply: make(chan error, 1)}
	select {
	case <-a.quit:
		return ErrStopped
	default:
	}
	select {
	case a.commands <- cmd:
	default:
		return ErrBusy
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-a.quit:
		return ErrStopped
	}
}

// post enqueues an internal op from a timer goroutine. Unlike Do it
// blocks rather than reporting busy, and discards the result.
func (a *GameActor) post(op Op) {
	cmd := command{op: op, reply: make(chan error, 1)}
	select {
	case a.commands <- cmd:
	case <-a.quit:
	}
}

// Snapshot returns the game state redacted for the given player. Pass
// an empty ID for a spectator view.
func (a *GameActor) Snapshot(playerID string) *catan.GameState {
	return a.snap.Load().RedactFor(playerID)
}

// Stop shuts the actor down. Pending commands are abandoned.
func (a *GameActor) Stop() {
	a.stopOnce.Do(func() {
		close(a.quit)
		if a.onStop != nil {
			a.onStop(a.code)
		}
	})
}

func (a *GameActor) run() {
	defer close(a.done)
	for {
		select {
		case cmd := <-a.commands:
			cmd.reply <- a.handle(cmd.op)
		case <-a.quit:
			a.stopTimers()
			return
		}
	}
}

func (a *GameActor) handle(op Op) error {
	next := a.state.Clone()
	events, err := op(next, a.rng)
	if err != nil {
		return err
	}
	wasFinished := a.state.Phase == catan.PhaseFinished
	a.state = next
	a.snap.Store(next)

	a.fanOut(events)
	a.armTradeTimer()
	a.armTurnTimer()
	a.armAbandonTimer()

	if !wasFinished && next.Phase == catan.PhaseFinished {
		a.persistFinished(next)
	}
	if next.Status == catan.StatusAbandoned {
		go a.Stop()
	}
	return nil
}

func (a *GameActor) persistFinished(gs *catan.GameState) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.store.SaveFinished(ctx, gs); err != nil {
			log.Error().Err(err).Str("gameId", a.id).Str("code", a.code).Msg("Failed to persist finished game")
		}
	}()
}

// Subscription is one subscriber's bounded event feed. If the feed
// overflows, newer events are dropped and the lag flag is set; the
// subscriber should request a fresh snapshot when it sees the flag.
type Subscription struct {
	playerID string
	ch       chan catan.Event
	lagged   atomic.Bool
	once     sync.Once
	actor    *GameActor
}

// PlayerID returns the subscriber's player ID.
func (s *Subscription) PlayerID() string { return s.playerID }

// Events returns the subscriber's event feed.
func (s *Subscription) Events() <-chan catan.Event { return s.ch }

// Lagged reports and clears the overflow flag.
func (s *Subscription) Lagged() bool { return s.lagged.Swap(false) }

// Close detaches the subscription and marks the player disconnected.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.actor.unsubscribe(s)
	})
}

// Subscribe attaches an event feed for the given player and marks them
// connected. Spectators subscribe with an ID no seat holds.
func (a *GameActor) Subscribe(playerID string) *Subscription {
	s := &Subscription{
		playerID: playerID,
		ch:       make(chan catan.Event, subscriberBuffer),
		actor:    a,
	}
	a.subMu.Lock()
	a.subs[s] = struct{}{}
	a.subMu.Unlock()

	go a.post(func(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
		p := gs.Player(playerID)
		if p == nil || p.IsConnected {
			return nil, nil
		}
		p.IsConnected = true
		return []catan.Event{{Type: catan.EventPlayerReconnected, Data: map[string]any{
			"player_id": playerID,
		}}}, nil
	})
	return s
}

func (a *GameActor) unsubscribe(s *Subscription) {
	a.subMu.Lock()
	delete(a.subs, s)
	stillConnected := false
	for other := range a.subs {
		if other.playerID == s.playerID {
			stillConnected = true
			break
		}
	}
	a.subMu.Unlock()
	close(s.ch)

	if !stillConnected {
		go a.post(func(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
			p := gs.Player(s.playerID)
			if p == nil || !p.IsConnected {
				return nil, nil
			}
			p.IsConnected = false
			return []catan.Event{{Type: catan.EventPlayerDisconnected, Data: map[string]any{
				"player_id": s.playerID,
			}}}, nil
		})
	}
}

func (a *GameActor) fanOut(events []catan.Event) {
	if len(events) == 0 {
		return
	}
	a.subMu.RLock()
	defer a.subMu.RUnlock()
	for _, ev := range events {
		for s := range a.subs {
			if len(ev.Recipients) > 0 && !containsID(ev.Recipients, s.playerID) {
				continue
			}
			select {
			case s.ch <- ev:
			default:
				s.lagged.Store(true)
				log.Warn().Str("code", a.code).Str("playerId", s.playerID).Str("event", ev.Type).
					Msg("Subscriber buffer full, dropping event")
			}
		}
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (a *GameActor) armTradeTimer() {
	tr := a.state.ActiveTrade
	if tr == nil {
		if a.tradeTimer != nil {
			a.tradeTimer.Stop()
			a.tradeTimer = nil
			a.tradeTimerID = ""
		}
		return
	}
	if tr.ID == a.tradeTimerID {
		return
	}
	if a.tradeTimer != nil {
		a.tradeTimer.Stop()
	}
	a.tradeTimerID = tr.ID
	tradeID := tr.ID
	d := time.Until(tr.ExpiresAt)
	if d < 0 {
		d = 0
	}
	a.tradeTimer = time.AfterFunc(d, func() {
		a.post(func(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
			return catan.ExpireTrade(gs, tradeID, time.Now().UTC())
		})
	})
}

func turnKey(gs *catan.GameState) string {
	return fmt.Sprintf("%d/%d/%s", gs.TurnNumber, gs.CurrentPlayerIndex, gs.TurnPhase)
}

func (a *GameActor) armTurnTimer() {
	if a.turnTimeout <= 0 {
		return
	}
	if a.state.Phase != catan.PhasePlaying {
		if a.turnTimer != nil {
			a.turnTimer.Stop()
			a.turnTimer = nil
			a.turnKey = ""
		}
		return
	}
	key := turnKey(a.state)
	if key == a.turnKey && a.turnTimer != nil {
		return
	}
	if a.turnTimer != nil {
		a.turnTimer.Stop()
	}
	a.turnKey = key
	a.turnTimer = time.AfterFunc(a.turnTimeout, func() {
		a.post(func(gs *catan.GameState, rng catan.RNG) ([]catan.Event, error) {
			if gs.Phase != catan.PhasePlaying || turnKey(gs) != key {
				return nil, nil
			}
			log.Info().Str("code", a.code).Str("turnPhase", string(gs.TurnPhase)).
				Msg("Turn timer expired, auto-advancing")
			return autoAdvance(gs, rng)
		})
	})
}

// armAbandonTimer starts the abandonment clock when every seated player
// is disconnected and stops it as soon as anyone returns.
func (a *GameActor) armAbandonTimer() {
	if a.state.Phase == catan.PhaseFinished || a.state.Status == catan.StatusAbandoned {
		if a.abandonTimer != nil {
			a.abandonTimer.Stop()
			a.abandonTimer = nil
		}
		return
	}
	anyConnected := false
	for _, p := range a.state.Players {
		if p.IsConnected {
			anyConnected = true
			break
		}
	}
	if anyConnected {
		if a.abandonTimer != nil {
			a.abandonTimer.Stop()
			a.abandonTimer = nil
		}
		return
	}
	if a.abandonTimer != nil {
		return
	}
	a.abandonTimer = time.AfterFunc(a.abandonAfter, func() {
		a.post(abandonOp)
	})
}

func abandonOp(gs *catan.GameState, _ catan.RNG) ([]catan.Event, error) {
	if gs.Phase == catan.PhaseFinished || gs.Status == catan.StatusAbandoned {
		return nil, nil
	}
	for _, p := range gs.Players {
		if p.IsConnected {
			return nil, nil
		}
	}
	now := time.Now().UTC()
	gs.Status = catan.StatusAbandoned
	gs.FinishedAt = &now
	log.Info().Str("code", gs.Code).Msg("Game abandoned, all players disconnected")
	return []catan.Event{{Type: catan.EventGameEnded, Data: map[string]any{
		"reason": "abandoned",
	}}}, nil
}

func (a *GameActor) stopTimers() {
	for _, t := range []*time.Timer{a.tradeTimer, a.turnTimer, a.abandonTimer} {
		if t != nil {
			t.Stop()
		}
	}
}
