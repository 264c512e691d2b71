// Package repository defines the persistence adapter for finished
// games. The core is in-memory; the store is written to once per game,
// on the transition to finished, and read only for recovery.
package repository

import (
	"context"

	"github.com/opencatan/server/pkg/catan"
)

// Store persists finished game snapshots.
type Store interface {
	// SaveFinished writes the final snapshot of a finished game.
	SaveFinished(ctx context.Context, gs *catan.GameState) error
	// LoadGame returns a stored snapshot by game code, or nil if none.
	LoadGame(ctx context.Context, code string) (*catan.GameState, error)
}

// NoopStore discards snapshots. Used when no DATABASE_URL is configured.
type NoopStore struct{}

func (NoopStore) SaveFinished(ctx context.Context, gs *catan.GameState) error {
	return nil
}

func (NoopStore) LoadGame(ctx context.Context, code string) (*catan.GameState, error) {
	return nil, nil
}
