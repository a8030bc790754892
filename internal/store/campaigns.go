package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateCampaign inserts a new active campaign and returns its id.
func (s *Store) CreateCampaign(ctx context.Context, mediaRef, title string, endDate time.Time) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id,
		`INSERT INTO campaigns (media_ref, title, end_date, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		mediaRef, title, endDate, StatusActive,
	)
	if err != nil {
		return 0, fmt.Errorf("store: create campaign: %w", err)
	}
	return id, nil
}

// ActiveCampaign returns the current active campaign, ErrNotFound when
// none is live.
func (s *Store) ActiveCampaign(ctx context.Context) (*Campaign, error) {
	var c Campaign
	err := s.db.GetContext(ctx, &c,
		`SELECT id, media_ref, title, end_date, status, anchor_message_id, created_at
		 FROM campaigns
		 WHERE status = $1
		 ORDER BY id DESC
		 LIMIT 1`,
		StatusActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: active campaign: %w", err)
	}
	return &c, nil
}

// CampaignByID loads one campaign regardless of status.
func (s *Store) CampaignByID(ctx context.Context, id int64) (*Campaign, error) {
	var c Campaign
	err := s.db.GetContext(ctx, &c,
		`SELECT id, media_ref, title, end_date, status, anchor_message_id, created_at
		 FROM campaigns
		 WHERE id = $1`,
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: campaign %d: %w", id, err)
	}
	return &c, nil
}

// UpdateCampaign replaces the editable fields of a campaign.
func (s *Store) UpdateCampaign(ctx context.Context, id int64, mediaRef, title string, endDate time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE campaigns SET media_ref = $2, title = $3, end_date = $4 WHERE id = $1`,
		id, mediaRef, title, endDate,
	)
	if err != nil {
		return fmt.Errorf("store: update campaign %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetCampaignAnchor stores the channel message id the campaign is
// published under.
func (s *Store) SetCampaignAnchor(ctx context.Context, id, messageID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE campaigns SET anchor_message_id = $2 WHERE id = $1`,
		id, messageID,
	)
	if err != nil {
		return fmt.Errorf("store: set campaign anchor %d: %w", id, err)
	}
	return nil
}

// DeactivateCampaign soft-deletes the campaign. The channel message,
// if any, is the publication manager's concern.
func (s *Store) DeactivateCampaign(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE campaigns SET status = $2 WHERE id = $1`,
		id, StatusInactive,
	)
	if err != nil {
		return fmt.Errorf("store: deactivate campaign %d: %w", id, err)
	}
	return nil
}

// DeactivateOtherCampaigns retires every active campaign except keep,
// preserving the single-active invariant when a new one goes live.
func (s *Store) DeactivateOtherCampaigns(ctx context.Context, keep int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE campaigns SET status = $2 WHERE status = $3 AND id <> $1`,
		keep, StatusInactive, StatusActive,
	)
	if err != nil {
		return 0, fmt.Errorf("store: deactivate other campaigns: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store: deactivate other campaigns: %w", err)
	}
	return n, nil
}
