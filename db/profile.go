// ABOUTME: User profile persistence
// ABOUTME: The profile is a single row that is upserted in place
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harperreed/nudge/models"
)

// GetUserProfile returns the stored profile or ErrNotFound before onboarding.
func (s *Store) GetUserProfile(ctx context.Context) (*models.UserProfile, error) {
	var p models.UserProfile
	var tone string

	err := s.db.QueryRowContext(ctx, `
		SELECT name, demographics, background_raw, background_ai_summary,
		       goals_raw, goals_ai_summary, message_tone, updated_at
		FROM user_profile WHERE id = 1
	`).Scan(
		&p.Name,
		&p.Demographics,
		&p.BackgroundRaw,
		&p.BackgroundAISummary,
		&p.GoalsRaw,
		&p.GoalsAISummary,
		&tone,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	p.Preferences.MessageTone = models.ParseTone(tone)
	return &p, nil
}

// SaveUserProfile creates or replaces the profile.
func (s *Store) SaveUserProfile(ctx context.Context, p *models.UserProfile) error {
	if p == nil {
		return ErrInvalidRecord
	}

	p.Preferences.MessageTone = p.Tone()
	p.UpdatedAt = s.now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_profile (id, name, demographics, background_raw, background_ai_summary,
		                          goals_raw, goals_ai_summary, message_tone, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			demographics = excluded.demographics,
			background_raw = excluded.background_raw,
			background_ai_summary = excluded.background_ai_summary,
			goals_raw = excluded.goals_raw,
			goals_ai_summary = excluded.goals_ai_summary,
			message_tone = excluded.message_tone,
			updated_at = excluded.updated_at
	`, p.Name, p.Demographics, p.BackgroundRaw, p.BackgroundAISummary,
		p.GoalsRaw, p.GoalsAISummary, string(p.Preferences.MessageTone), p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
