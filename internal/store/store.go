// Package store is the persistence layer: operators, campaigns,
// registrations, announcements, verified identities and known users.
// Every method is one independently committed statement; multi-step
// operations are kept idempotent instead of transactional.
package store

import (
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("store: not found")

// Store wraps the database handle.
type Store struct {
	db *sqlx.DB
}

// New creates a Store over an open connection pool.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}
