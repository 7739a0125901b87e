// ABOUTME: Contact database operations
// ABOUTME: Handles CRUD, name search with status filters, and cascading deletes
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/harperreed/nudge/models"
)

// Contact list filters.
const (
	FilterAll      = "all"
	FilterWarm     = "warm"
	FilterCold     = "cold"
	FilterFollowUp = "follow-up"
)

// ContactQuery narrows FindContacts.
type ContactQuery struct {
	Name   string
	Filter string
	Limit  int
}

const contactColumns = `id, name, info_raw, info_ai_summary, last_reach_out_date, status,
	follow_up_frequency, message_tone, created_at, updated_at`

func validStatus(s string) bool {
	switch s {
	case models.StatusWarm, models.StatusNeutral, models.StatusCold:
		return true
	}
	return false
}

// CreateContact assigns an id and fills defaults before inserting.
func (s *Store) CreateContact(ctx context.Context, c *models.Contact) error {
	if c == nil || strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: contact name is required", ErrInvalidRecord)
	}
	if c.Status == "" {
		c.Status = models.StatusNeutral
	}
	if !validStatus(c.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidRecord, c.Status)
	}

	c.ID = uuid.New()
	c.Name = strings.TrimSpace(c.Name)
	c.Preferences = c.ResolvedPreferences()
	now := s.now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (`+contactColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID.String(), c.Name, c.InfoRaw, c.InfoAISummary, utcPtr(c.LastReachOutDate), c.Status,
		c.Preferences.FollowUpFrequency, string(c.Preferences.MessageTone), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// GetContact returns ErrNotFound for unknown ids.
func (s *Store) GetContact(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id.String())
	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contact: %w", err)
	}
	return c, nil
}

// UpdateContact overwrites the editable fields of an existing contact.
func (s *Store) UpdateContact(ctx context.Context, c *models.Contact) error {
	if c == nil || c.ID == uuid.Nil || strings.TrimSpace(c.Name) == "" {
		return ErrInvalidRecord
	}
	if !validStatus(c.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidRecord, c.Status)
	}

	c.Name = strings.TrimSpace(c.Name)
	c.Preferences = c.ResolvedPreferences()
	c.UpdatedAt = s.now()

	res, err := s.db.ExecContext(ctx, `
		UPDATE contacts
		SET name = ?, info_raw = ?, info_ai_summary = ?, last_reach_out_date = ?, status = ?,
		    follow_up_frequency = ?, message_tone = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, c.InfoRaw, c.InfoAISummary, utcPtr(c.LastReachOutDate), c.Status,
		c.Preferences.FollowUpFrequency, string(c.Preferences.MessageTone), c.UpdatedAt, c.ID.String())
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return requireAffected(res)
}

// DeleteContact removes a contact and all of its events.
func (s *Store) DeleteContact(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE contact_id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete contact events: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

// FindContacts searches by case-insensitive name substring. The follow-up
// filter keeps contacts never reached or overdue for their cadence.
func (s *Store) FindContacts(ctx context.Context, q ContactQuery) ([]models.Contact, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}

	query := `SELECT ` + contactColumns + ` FROM contacts WHERE name LIKE ? COLLATE NOCASE`
	args := []any{"%" + q.Name + "%"}

	switch q.Filter {
	case "", FilterAll, FilterFollowUp:
	case FilterWarm, FilterCold:
		query += ` AND status = ?`
		args = append(args, q.Filter)
	default:
		return nil, fmt.Errorf("unknown filter %q", q.Filter)
	}
	query += ` ORDER BY name COLLATE NOCASE`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	now := s.now()
	var contacts []models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		if q.Filter == FilterFollowUp && c.LastReachOutDate != nil && !c.IsOverdue(now) {
			continue
		}
		contacts = append(contacts, *c)
		if len(contacts) == q.Limit {
			break
		}
	}
	return contacts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContact(row scanner) (*models.Contact, error) {
	var c models.Contact
	var last sql.NullTime
	var tone string

	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.InfoRaw,
		&c.InfoAISummary,
		&last,
		&c.Status,
		&c.Preferences.FollowUpFrequency,
		&tone,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if last.Valid {
		t := last.Time.UTC()
		c.LastReachOutDate = &t
	}
	c.Preferences.MessageTone = models.Tone(tone)
	c.Preferences = c.ResolvedPreferences()
	return &c, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
