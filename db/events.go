// ABOUTME: Interaction event database operations
// ABOUTME: Keeps the owning contact's last reach-out date in step with its latest event
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/nudge/models"
)

const eventColumns = `id, contact_id, notes_raw, notes_ai_summary, date, follow_up_status, tags, created_at, updated_at`

// AddEvent inserts an event for an existing contact.
func (s *Store) AddEvent(ctx context.Context, e *models.Event) error {
	if err := validateEvent(e); err != nil {
		return err
	}

	e.ID = uuid.New()
	e.Date = e.Date.UTC()
	now := s.now()
	e.CreatedAt = now
	e.UpdatedAt = now

	tags, err := json.Marshal(cleanTags(e.Tags))
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := contactExists(ctx, tx, e.ContactID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID.String(), e.ContactID.String(), e.NotesRaw, e.NotesAISummary, e.Date,
		e.FollowUpStatus, string(tags), e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	if err := s.touchLastReachOut(ctx, tx, e); err != nil {
		return err
	}
	return tx.Commit()
}

// GetEvent returns ErrNotFound for unknown ids.
func (s *Store) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id.String())
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	return e, nil
}

// UpdateEvent overwrites an event. When the event is now the contact's most
// recent one, the contact's last reach-out follows its date.
func (s *Store) UpdateEvent(ctx context.Context, e *models.Event) error {
	if e == nil || e.ID == uuid.Nil {
		return ErrInvalidRecord
	}
	if err := validateEvent(e); err != nil {
		return err
	}

	e.Date = e.Date.UTC()
	e.UpdatedAt = s.now()

	tags, err := json.Marshal(cleanTags(e.Tags))
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var oldDate time.Time
	err = tx.QueryRowContext(ctx, `SELECT date FROM events WHERE id = ?`, e.ID.String()).Scan(&oldDate)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load event: %w", err)
	}

	if err := contactExists(ctx, tx, e.ContactID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE events
		SET contact_id = ?, notes_raw = ?, notes_ai_summary = ?, date = ?,
		    follow_up_status = ?, tags = ?, updated_at = ?
		WHERE id = ?
	`, e.ContactID.String(), e.NotesRaw, e.NotesAISummary, e.Date,
		e.FollowUpStatus, string(tags), e.UpdatedAt, e.ID.String())
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	if !oldDate.Equal(e.Date) {
		if err := s.touchLastReachOut(ctx, tx, e); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteEvent removes one event. The contact's last reach-out is left alone.
func (s *Store) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return requireAffected(res)
}

// ListEventsByContact returns a contact's events, newest first.
func (s *Store) ListEventsByContact(ctx context.Context, contactID uuid.UUID) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE contact_id = ?
		ORDER BY date DESC, created_at DESC
	`, contactID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// touchLastReachOut moves the contact's last reach-out to e.Date unless
// another of its events is later.
func (s *Store) touchLastReachOut(ctx context.Context, tx *sql.Tx, e *models.Event) error {
	var later int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM events WHERE contact_id = ? AND id != ? AND date > ?
	`, e.ContactID.String(), e.ID.String(), e.Date).Scan(&later)
	if err != nil {
		return fmt.Errorf("failed to compare event dates: %w", err)
	}
	if later > 0 {
		return nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE contacts SET last_reach_out_date = ?, updated_at = ? WHERE id = ?
	`, e.Date, s.now(), e.ContactID.String())
	if err != nil {
		return fmt.Errorf("failed to update last reach-out: %w", err)
	}
	return nil
}

func validateEvent(e *models.Event) error {
	if e == nil || e.ContactID == uuid.Nil {
		return fmt.Errorf("%w: event needs a contact", ErrInvalidRecord)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: event needs a date", ErrInvalidRecord)
	}
	switch e.FollowUpStatus {
	case "":
		e.FollowUpStatus = models.FollowUpPending
	case models.FollowUpPending, models.FollowUpDone:
	default:
		return fmt.Errorf("%w: unknown follow-up status %q", ErrInvalidRecord, e.FollowUpStatus)
	}
	return nil
}

func contactExists(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM contacts WHERE id = ?`, id.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("contact %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check contact: %w", err)
	}
	return nil
}

func scanEvent(row scanner) (*models.Event, error) {
	var e models.Event
	var tags string

	err := row.Scan(
		&e.ID,
		&e.ContactID,
		&e.NotesRaw,
		&e.NotesAISummary,
		&e.Date,
		&e.FollowUpStatus,
		&tags,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Date = e.Date.UTC()
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	}
	if len(e.Tags) == 0 {
		e.Tags = nil
	}
	return &e, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
