// internal/history/store.go
//
// Match history persistence. The live board is never stored — this is an
// audit log of completed pairs, used for per-player stats and the
// leaderboard.

package history

import (
	"context"
	"database/sql"
)

type Match struct {
	Player string `json:"player"`
	Round  string `json:"round"`
	Label  string `json:"label"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// RecordMatch appends the match and bumps the player's pair counter.
func (s *Store) RecordMatch(ctx context.Context, m Match) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO matches(player, round_id, label) VALUES(?,?,?)`,
		m.Player, m.Round, m.Label,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO players(id, pairs) VALUES(?,1)
		 ON CONFLICT(id) DO UPDATE SET pairs = pairs + 1`,
		m.Player,
	); err != nil {
		return err
	}
	return tx.Commit()
}

type PlayerStats struct {
	Player string `json:"player"`
	Pairs  int    `json:"pairs"`
}

// Stats returns a player's lifetime pair count. Unknown players have zero
// stats, not an error.
func (s *Store) Stats(ctx context.Context, player string) (PlayerStats, error) {
	st := PlayerStats{Player: player}
	err := s.db.QueryRowContext(ctx,
		`SELECT pairs FROM players WHERE id=?`, player,
	).Scan(&st.Pairs)
	if err == sql.ErrNoRows {
		return st, nil
	}
	return st, err
}

type LBRow struct {
	Player string `json:"player"`
	Pairs  int    `json:"pairs"`
}

// Leaderboard returns the top players by pairs matched.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pairs FROM players ORDER BY pairs DESC, id ASC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.Player, &r.Pairs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
