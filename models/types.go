// ABOUTME: Data models for the relationship tracker
// ABOUTME: Defines UserProfile, Contact, Event and the transient ChatContext
package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")

// Tone is the voice a drafted message should use.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneSincere      Tone = "sincere"
)

// DefaultTone is used whenever no valid tone is configured.
const DefaultTone = ToneProfessional

// Valid reports whether t is one of the fixed tone values.
func (t Tone) Valid() bool {
	switch t {
	case ToneProfessional, ToneCasual, ToneSincere:
		return true
	}
	return false
}

// ParseTone resolves s to a tone, falling back to DefaultTone.
func ParseTone(s string) Tone {
	t := Tone(s)
	if t.Valid() {
		return t
	}
	return DefaultTone
}

// Follow-up frequency constants.
const (
	FrequencyOneMonth    = "1 Month"
	FrequencyThreeMonths = "3 Months"
	FrequencySixMonths   = "6 Months"
	FrequencyNever       = "Never"
)

// DefaultFollowUpFrequency is applied to contacts created without a cadence.
const DefaultFollowUpFrequency = FrequencyOneMonth

// ValidFrequency reports whether f is a known follow-up frequency.
func ValidFrequency(f string) bool {
	switch f {
	case FrequencyOneMonth, FrequencyThreeMonths, FrequencySixMonths, FrequencyNever:
		return true
	}
	return false
}

// FrequencyDays converts a follow-up frequency to a day count. Never yields 0.
func FrequencyDays(f string) int {
	switch f {
	case FrequencyOneMonth:
		return 30
	case FrequencyThreeMonths:
		return 90
	case FrequencySixMonths:
		return 180
	}
	return 0
}

// Contact status constants.
const (
	StatusWarm    = "warm"
	StatusNeutral = "neutral"
	StatusCold    = "cold"
)

// Follow-up status constants.
const (
	FollowUpPending = "pending"
	FollowUpDone    = "done"
)

type UserProfile struct {
	Name                string             `json:"name"`
	Demographics        string             `json:"demographics,omitempty"`
	BackgroundRaw       string             `json:"background_raw,omitempty"`
	BackgroundAISummary string             `json:"background_ai_summary,omitempty"`
	GoalsRaw            string             `json:"goals_raw,omitempty"`
	GoalsAISummary      string             `json:"goals_ai_summary,omitempty"`
	Preferences         ProfilePreferences `json:"preferences"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

type ProfilePreferences struct {
	MessageTone Tone `json:"message_tone"`
}

// Tone returns the profile's tone, defaulting when unset or invalid.
func (p *UserProfile) Tone() Tone {
	if p == nil {
		return DefaultTone
	}
	return ParseTone(string(p.Preferences.MessageTone))
}

// ResolveTone picks the drafting tone: a valid override first, then the
// contact's stored tone, then the profile's, then DefaultTone.
func ResolveTone(override Tone, contact *Contact, profile *UserProfile) Tone {
	if override.Valid() {
		return override
	}
	if contact != nil && contact.Preferences.MessageTone.Valid() {
		return contact.Preferences.MessageTone
	}
	return profile.Tone()
}

type ContactPreferences struct {
	FollowUpFrequency string `json:"follow_up_frequency"`
	MessageTone       Tone   `json:"message_tone"`
}

type Contact struct {
	ID               uuid.UUID          `json:"id"`
	Name             string             `json:"name"`
	InfoRaw          string             `json:"info_raw,omitempty"`
	InfoAISummary    string             `json:"info_ai_summary,omitempty"`
	LastReachOutDate *time.Time         `json:"last_reach_out_date,omitempty"`
	Status           string             `json:"status"`
	Preferences      ContactPreferences `json:"preferences"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// ResolvedPreferences returns the contact preferences with defaults filled in.
// Contacts stored before preferences existed resolve to the defaults.
func (c *Contact) ResolvedPreferences() ContactPreferences {
	prefs := c.Preferences
	if !ValidFrequency(prefs.FollowUpFrequency) {
		prefs.FollowUpFrequency = DefaultFollowUpFrequency
	}
	prefs.MessageTone = ParseTone(string(prefs.MessageTone))
	return prefs
}

// NextFollowUp returns when the contact is next due, or nil if never.
func (c *Contact) NextFollowUp() *time.Time {
	days := FrequencyDays(c.ResolvedPreferences().FollowUpFrequency)
	if days == 0 || c.LastReachOutDate == nil {
		return nil
	}
	next := c.LastReachOutDate.AddDate(0, 0, days)
	return &next
}

// IsOverdue reports whether a follow-up is due as of now.
func (c *Contact) IsOverdue(now time.Time) bool {
	next := c.NextFollowUp()
	return next != nil && now.After(*next)
}

// Event is a single logged interaction with one contact.
type Event struct {
	ID             uuid.UUID `json:"id"`
	ContactID      uuid.UUID `json:"contact_id"`
	NotesRaw       string    `json:"notes_raw,omitempty"`
	NotesAISummary string    `json:"notes_ai_summary,omitempty"`
	Date           time.Time `json:"date"`
	FollowUpStatus string    `json:"follow_up_status"`
	Tags           []string  `json:"tags,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DateISO formats the event date the way it is shown to the model.
func (e *Event) DateISO() string {
	return e.Date.UTC().Format(time.RFC3339)
}

// ChatContext describes what the drafting surface is currently targeting.
// It lives only while the surface is open and is never persisted.
type ChatContext struct {
	IsOpen    bool       `json:"is_open"`
	ContactID *uuid.UUID `json:"contact_id,omitempty"`
	EventID   *uuid.UUID `json:"event_id,omitempty"`
	Tone      Tone       `json:"tone,omitempty"`
}

// OpenChat returns an open context targeting the given contact and event.
func OpenChat(contactID, eventID *uuid.UUID, tone Tone) ChatContext {
	return ChatContext{
		IsOpen:    true,
		ContactID: contactID,
		EventID:   eventID,
		Tone:      tone,
	}
}

// Close clears the context.
func (c *ChatContext) Close() {
	*c = ChatContext{}
}

// Reach-out labels used in listings.
const (
	ReachOutNew       = "New"
	ReachOutActive    = "Active"
	ReachOutCheckSoon = "Check in soon"
	ReachOutFollowUp  = "Follow up"
)

// ReachOutLabel buckets the last reach-out: within a month is active, within
// three months is due for a check-in, anything older needs a follow-up.
func (c *Contact) ReachOutLabel(now time.Time) string {
	if c.LastReachOutDate == nil {
		return ReachOutNew
	}
	switch last := *c.LastReachOutDate; {
	case last.Before(now.AddDate(0, -3, 0)):
		return ReachOutFollowUp
	case last.Before(now.AddDate(0, -1, 0)):
		return ReachOutCheckSoon
	}
	return ReachOutActive
}
