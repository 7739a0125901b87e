// ABOUTME: Store groups the profile, contact and event repositories over one SQLite handle
// ABOUTME: Implements the read side the drafting assistant depends on
package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/harperreed/nudge/models"
)

var (
	ErrNotFound      = models.ErrNotFound
	ErrInvalidRecord = errors.New("invalid record")
)

// Store provides CRUD operations for profile, contacts and events.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore wraps an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}
