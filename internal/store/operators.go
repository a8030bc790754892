package store

import (
	"context"
	"fmt"
)

// AddOperator grants operator rights. Re-adding is a no-op.
func (s *Store) AddOperator(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO operators (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("store: add operator %d: %w", userID, err)
	}
	return nil
}

// RemoveOperator revokes operator rights. Removing an unknown id is a
// no-op, reported via removed=false.
func (s *Store) RemoveOperator(ctx context.Context, userID int64) (removed bool, err error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM operators WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return false, fmt.Errorf("store: remove operator %d: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: remove operator %d: %w", userID, err)
	}
	return n > 0, nil
}

// IsOperator reports whether the user is on the operator roster.
func (s *Store) IsOperator(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM operators WHERE user_id = $1)`,
		userID,
	)
	if err != nil {
		return false, fmt.Errorf("store: operator check %d: %w", userID, err)
	}
	return exists, nil
}
