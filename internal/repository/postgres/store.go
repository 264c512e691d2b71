package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/opencatan/server/pkg/catan"
)

// Store persists finished games as JSON snapshots in a single table.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store and ensures its table exists.
func NewStore(db *sql.DB) (*Store, error) {
	_, err := db.Exec(
		`CREATE TABLE IF NOT EXISTS finished_games (
			code        TEXT PRIMARY KEY,
			winner_id   TEXT NOT NULL,
			state       JSONB NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return nil, fmt.Errorf("create finished_games: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveFinished writes the final snapshot of a finished game, replacing
// any earlier snapshot under the same code.
func (s *Store) SaveFinished(ctx context.Context, gs *catan.GameState) error {
	state, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("marshal game %s: %w", gs.Code, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO finished_games (code, winner_id, state, finished_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (code) DO UPDATE
		 SET winner_id = EXCLUDED.winner_id, state = EXCLUDED.state, finished_at = EXCLUDED.finished_at`,
		gs.Code, gs.WinnerID, state, gs.FinishedAt)
	if err != nil {
		return fmt.Errorf("save finished game %s: %w", gs.Code, err)
	}
	return nil
}

// LoadGame returns a stored snapshot by game code, or nil if none exists.
func (s *Store) LoadGame(ctx context.Context, code string) (*catan.GameState, error) {
	var state []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM finished_games WHERE code = $1`, code,
	).Scan(&state)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", code, err)
	}
	var gs catan.GameState
	if err := json.Unmarshal(state, &gs); err != nil {
		return nil, fmt.Errorf("unmarshal game %s: %w", code, err)
	}
	return &gs, nil
}
