// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements find_contacts and log_interaction on top of the SQLite store
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/nudge/db"
	"github.com/harperreed/nudge/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ContactStore is the part of db.Store the contact tools use.
type ContactStore interface {
	FindContacts(ctx context.Context, q db.ContactQuery) ([]models.Contact, error)
	AddEvent(ctx context.Context, e *models.Event) error
}

type ContactHandlers struct {
	store ContactStore
	now   func() time.Time
}

func NewContactHandlers(store ContactStore) *ContactHandlers {
	return &ContactHandlers{store: store, now: time.Now}
}

type ContactOutput struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Status            string  `json:"status"`
	Summary           string  `json:"summary,omitempty"`
	FollowUpFrequency string  `json:"follow_up_frequency"`
	MessageTone       string  `json:"message_tone"`
	LastReachOut      *string `json:"last_reach_out,omitempty"`
	ReachOut          string  `json:"reach_out"`
}

type FindContactsInput struct {
	Query  string `json:"query,omitempty" jsonschema:"Case-insensitive name search"`
	Filter string `json:"filter,omitempty" jsonschema:"One of all, warm, cold, follow-up (default all)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
}

func (h *ContactHandlers) FindContacts(ctx context.Context, _ *mcp.CallToolRequest, input FindContactsInput) (*mcp.CallToolResult, FindContactsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	filter := strings.TrimSpace(input.Filter)
	if filter == "" {
		filter = db.FilterAll
	}

	contacts, err := h.store.FindContacts(ctx, db.ContactQuery{
		Name:   input.Query,
		Filter: filter,
		Limit:  limit,
	})
	if err != nil {
		return nil, FindContactsOutput{}, fmt.Errorf("failed to find contacts: %w", err)
	}

	now := h.now()
	result := make([]ContactOutput, len(contacts))
	for i := range contacts {
		result[i] = contactToOutput(&contacts[i], now)
	}

	return nil, FindContactsOutput{Contacts: result}, nil
}

type LogInteractionInput struct {
	ContactID string   `json:"contact_id" jsonschema:"Contact ID (required)"`
	Notes     string   `json:"notes" jsonschema:"What happened during the interaction (required)"`
	Summary   string   `json:"summary,omitempty" jsonschema:"Short summary used when drafting follow-ups (defaults to the notes)"`
	Date      string   `json:"date,omitempty" jsonschema:"Interaction date, RFC3339 or YYYY-MM-DD (default now)"`
	Tags      []string `json:"tags,omitempty" jsonschema:"Free-form tags"`
}

type EventOutput struct {
	ID             string   `json:"id"`
	ContactID      string   `json:"contact_id"`
	Date           string   `json:"date"`
	Summary        string   `json:"summary,omitempty"`
	FollowUpStatus string   `json:"follow_up_status"`
	Tags           []string `json:"tags,omitempty"`
}

func (h *ContactHandlers) LogInteraction(ctx context.Context, _ *mcp.CallToolRequest, input LogInteractionInput) (*mcp.CallToolResult, EventOutput, error) {
	contactID, err := uuid.Parse(input.ContactID)
	if err != nil {
		return nil, EventOutput{}, fmt.Errorf("invalid contact_id: %w", err)
	}

	notes := strings.TrimSpace(input.Notes)
	if notes == "" {
		return nil, EventOutput{}, fmt.Errorf("notes is required")
	}

	date := h.now()
	if input.Date != "" {
		date, err = ParseDate(input.Date)
		if err != nil {
			return nil, EventOutput{}, err
		}
	}

	summary := strings.TrimSpace(input.Summary)
	if summary == "" {
		summary = notes
	}

	event := &models.Event{
		ContactID:      contactID,
		NotesRaw:       notes,
		NotesAISummary: summary,
		Date:           date,
		Tags:           input.Tags,
	}
	if err := h.store.AddEvent(ctx, event); err != nil {
		return nil, EventOutput{}, fmt.Errorf("failed to log interaction: %w", err)
	}

	return nil, eventToOutput(event), nil
}

// ParseDate accepts RFC3339 timestamps and plain YYYY-MM-DD dates.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use RFC3339 or YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}

func contactToOutput(c *models.Contact, now time.Time) ContactOutput {
	prefs := c.ResolvedPreferences()
	out := ContactOutput{
		ID:                c.ID.String(),
		Name:              c.Name,
		Status:            c.Status,
		Summary:           c.InfoAISummary,
		FollowUpFrequency: prefs.FollowUpFrequency,
		MessageTone:       string(prefs.MessageTone),
		ReachOut:          c.ReachOutLabel(now),
	}
	if c.LastReachOutDate != nil {
		last := c.LastReachOutDate.UTC().Format(time.RFC3339)
		out.LastReachOut = &last
	}
	return out
}

func eventToOutput(e *models.Event) EventOutput {
	return EventOutput{
		ID:             e.ID.String(),
		ContactID:      e.ContactID.String(),
		Date:           e.DateISO(),
		Summary:        e.NotesAISummary,
		FollowUpStatus: e.FollowUpStatus,
		Tags:           e.Tags,
	}
}
