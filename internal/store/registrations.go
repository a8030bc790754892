package store

import (
	"context"
	"fmt"
)

// InsertRegistration records participation. The insert is idempotent:
// a duplicate (campaign, user) pair is not an error, inserted reports
// whether this call created the row.
func (s *Store) InsertRegistration(ctx context.Context, campaignID, userID int64, displayName, phone string) (inserted bool, err error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO registrations (campaign_id, user_id, display_name, phone)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (campaign_id, user_id) DO NOTHING`,
		campaignID, userID, displayName, phone,
	)
	if err != nil {
		return false, fmt.Errorf("store: insert registration (%d,%d): %w", campaignID, userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: insert registration (%d,%d): %w", campaignID, userID, err)
	}
	return n > 0, nil
}

// RegistrationExists reports whether the user already joined the
// campaign.
func (s *Store) RegistrationExists(ctx context.Context, campaignID, userID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE campaign_id = $1 AND user_id = $2)`,
		campaignID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("store: registration check (%d,%d): %w", campaignID, userID, err)
	}
	return exists, nil
}

// RegistrationsByCampaign lists participants for the operator export.
func (s *Store) RegistrationsByCampaign(ctx context.Context, campaignID int64) ([]Registration, error) {
	var regs []Registration
	err := s.db.SelectContext(ctx, &regs,
		`SELECT campaign_id, user_id, display_name, phone, created_at
		 FROM registrations
		 WHERE campaign_id = $1
		 ORDER BY created_at`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: registrations for %d: %w", campaignID, err)
	}
	return regs, nil
}
