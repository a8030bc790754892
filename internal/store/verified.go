package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// VerifiedPhone returns the phone a user verified with, or ErrNotFound.
func (s *Store) VerifiedPhone(ctx context.Context, userID int64) (string, error) {
	var phone string
	err := s.db.GetContext(ctx, &phone,
		`SELECT phone FROM verified_identities WHERE user_id = $1`,
		userID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: verified phone %d: %w", userID, err)
	}
	return phone, nil
}

// MarkVerified records the first phone a user supplies. The identity
// is immutable: a second call with any phone is a no-op and fresh
// reports false.
func (s *Store) MarkVerified(ctx context.Context, userID int64, phone string) (fresh bool, err error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO verified_identities (user_id, phone, verified_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, phone,
	)
	if err != nil {
		return false, fmt.Errorf("store: mark verified %d: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: mark verified %d: %w", userID, err)
	}
	return n > 0, nil
}
