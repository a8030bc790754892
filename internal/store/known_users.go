package store

import (
	"context"
	"fmt"
)

// TouchKnownUser records that the user has talked to the bot at least
// once. Repeated calls are no-ops.
func (s *Store) TouchKnownUser(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO known_users (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("store: touch known user %d: %w", userID, err)
	}
	return nil
}

// KnownUserIDs lists everyone the bot can message privately, the
// audience of announcement fan-out.
func (s *Store) KnownUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.SelectContext(ctx, &ids,
		`SELECT user_id FROM known_users ORDER BY user_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("store: known users: %w", err)
	}
	return ids, nil
}
