package store

import (
	"database/sql"
	"time"
)

// Campaign statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Campaign is a time-boxed promotion published to the channel.
type Campaign struct {
	ID       int64         `db:"id"`
	MediaRef string        `db:"media_ref"`
	Title    string        `db:"title"`
	EndDate  time.Time     `db:"end_date"`
	Status   string        `db:"status"`
	Anchor   sql.NullInt64 `db:"anchor_message_id"`
	Created  time.Time     `db:"created_at"`
}

// HasAnchor reports whether the campaign has a live channel message.
func (c *Campaign) HasAnchor() bool {
	return c.Anchor.Valid && c.Anchor.Int64 != 0
}

// Announcement is a one-off post published to the channel and fanned
// out to known users.
type Announcement struct {
	ID       int64         `db:"id"`
	MediaRef string        `db:"media_ref"`
	Title    string        `db:"title"`
	Body     string        `db:"body"`
	Anchor   sql.NullInt64 `db:"anchor_message_id"`
	Created  time.Time     `db:"created_at"`
}

// HasAnchor reports whether the announcement has a live channel message.
func (a *Announcement) HasAnchor() bool {
	return a.Anchor.Valid && a.Anchor.Int64 != 0
}

// Registration records one user's participation in one campaign.
type Registration struct {
	CampaignID  int64     `db:"campaign_id"`
	UserID      int64     `db:"user_id"`
	DisplayName string    `db:"display_name"`
	Phone       string    `db:"phone"`
	Created     time.Time `db:"created_at"`
}

// VerifiedIdentity maps a user to the phone they shared once.
type VerifiedIdentity struct {
	UserID     int64     `db:"user_id"`
	Phone      string    `db:"phone"`
	VerifiedAt time.Time `db:"verified_at"`
}
