// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation and initialization
package db

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_profile (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	name TEXT NOT NULL DEFAULT '',
	demographics TEXT NOT NULL DEFAULT '',
	background_raw TEXT NOT NULL DEFAULT '',
	background_ai_summary TEXT NOT NULL DEFAULT '',
	goals_raw TEXT NOT NULL DEFAULT '',
	goals_ai_summary TEXT NOT NULL DEFAULT '',
	message_tone TEXT NOT NULL DEFAULT 'professional',
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS contacts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	info_raw TEXT NOT NULL DEFAULT '',
	info_ai_summary TEXT NOT NULL DEFAULT '',
	last_reach_out_date DATETIME,
	status TEXT NOT NULL DEFAULT 'neutral',
	follow_up_frequency TEXT NOT NULL DEFAULT '1 Month',
	message_tone TEXT NOT NULL DEFAULT 'professional',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_name ON contacts(name);

CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	contact_id TEXT NOT NULL,
	notes_raw TEXT NOT NULL DEFAULT '',
	notes_ai_summary TEXT NOT NULL DEFAULT '',
	date DATETIME NOT NULL,
	follow_up_status TEXT NOT NULL DEFAULT 'pending',
	tags TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (contact_id) REFERENCES contacts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_events_contact_id ON events(contact_id);
CREATE INDEX IF NOT EXISTS idx_events_date ON events(date);
`

func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
