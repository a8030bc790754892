package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateAnnouncement inserts a new announcement and returns its id.
func (s *Store) CreateAnnouncement(ctx context.Context, mediaRef, title, body string) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id,
		`INSERT INTO announcements (media_ref, title, body)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		mediaRef, title, body,
	)
	if err != nil {
		return 0, fmt.Errorf("store: create announcement: %w", err)
	}
	return id, nil
}

// AnnouncementByID loads one announcement.
func (s *Store) AnnouncementByID(ctx context.Context, id int64) (*Announcement, error) {
	var a Announcement
	err := s.db.GetContext(ctx, &a,
		`SELECT id, media_ref, title, body, anchor_message_id, created_at
		 FROM announcements
		 WHERE id = $1`,
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: announcement %d: %w", id, err)
	}
	return &a, nil
}

// SetAnnouncementAnchor stores the channel message id the announcement
// is published under.
func (s *Store) SetAnnouncementAnchor(ctx context.Context, id, messageID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE announcements SET anchor_message_id = $2 WHERE id = $1`,
		id, messageID,
	)
	if err != nil {
		return fmt.Errorf("store: set announcement anchor %d: %w", id, err)
	}
	return nil
}
