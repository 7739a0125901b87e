// ABOUTME: Interaction-context compiler for follow-up drafting
// ABOUTME: Scrubs and clamps profile, contact and event fields into a sectioned prompt block
package compiler

import (
	"strings"
	"time"

	"github.com/harperreed/nudge/models"
)

// Field budgets, in characters.
const (
	MaxUserSummary    = 1200
	MaxDemographics   = 300
	MaxContactSummary = 800
	MaxNotes          = 1200
)

// Section markers, in output order.
const (
	SectionUserProfile    = "[USER_PROFILE_SUMMARY]"
	SectionContactBasics  = "[CONTACT_BASICS]"
	SectionContactSummary = "[CONTACT_SUMMARY]"
	SectionInteraction    = "[INTERACTION_HISTORY]"
	SectionTone           = "[TONE]"
)

var sections = []string{
	SectionUserProfile,
	SectionContactBasics,
	SectionContactSummary,
	SectionInteraction,
	SectionTone,
}

// markerNeutralizer rewrites literal section markers found in user text so the
// compiled block always carries exactly one of each.
var markerNeutralizer = func() *strings.Replacer {
	pairs := make([]string, 0, len(sections)*2)
	for _, s := range sections {
		pairs = append(pairs, s, "("+strings.Trim(s, "[]")+")")
	}
	return strings.NewReplacer(pairs...)
}()

// Payload groups the raw inputs for a single interaction.
type Payload struct {
	User        UserInput        `json:"user"`
	Contact     ContactInput     `json:"contact"`
	Interaction InteractionInput `json:"interaction"`
}

type UserInput struct {
	ProfileSummary string `json:"profile_summary"`
	Tone           string `json:"tone,omitempty"`
	Demographics   string `json:"demographics,omitempty"`
}

type ContactInput struct {
	Name              string `json:"name"`
	ContactAISummary  string `json:"contact_ai_summary"`
	FollowUpFrequency string `json:"followUpFrequency,omitempty"`
	LastReachOutDate  string `json:"lastReachOutDate,omitempty"`
}

type InteractionInput struct {
	DateISO        string   `json:"dateISO"`
	NotesAISummary string   `json:"notesAiSummary"`
	Tags           []string `json:"tags,omitempty"`
}

// Compiled is the sanitized, budgeted form of a Payload. It is rebuilt on
// every send and never stored.
type Compiled struct {
	UserSummary     string      `json:"user_summary"`
	Demographics    string      `json:"demographics,omitempty"`
	ContactName     string      `json:"contact_name"`
	FollowUpCadence string      `json:"follow_up_cadence,omitempty"`
	LastReachOut    string      `json:"last_reach_out,omitempty"`
	ContactSummary  string      `json:"contact_summary"`
	InteractionDate string      `json:"interaction_date"`
	Notes           string      `json:"notes"`
	Tags            []string    `json:"tags,omitempty"`
	Tone            models.Tone `json:"tone"`
}

// Compile sanitizes p. Free text is scrubbed and then clamped to its budget;
// structured fields (name, cadence, dates, tags) are copied as given.
func Compile(p Payload) Compiled {
	var tags []string
	for _, tag := range p.Interaction.Tags {
		if tag = neutralize(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	return Compiled{
		UserSummary:     freeText(p.User.ProfileSummary, MaxUserSummary),
		Demographics:    freeText(p.User.Demographics, MaxDemographics),
		ContactName:     neutralize(p.Contact.Name),
		FollowUpCadence: neutralize(p.Contact.FollowUpFrequency),
		LastReachOut:    neutralize(p.Contact.LastReachOutDate),
		ContactSummary:  freeText(p.Contact.ContactAISummary, MaxContactSummary),
		InteractionDate: neutralize(p.Interaction.DateISO),
		Notes:           freeText(p.Interaction.NotesAISummary, MaxNotes),
		Tags:            tags,
		Tone:            models.ParseTone(strings.TrimSpace(p.User.Tone)),
	}
}

// Render joins the compiled fields into the sectioned text block. The name,
// date and note lines are always present, even when their value is empty.
// Optional labeled lines and empty free-text bodies are dropped entirely, so
// no blank lines are emitted.
func (c Compiled) Render() string {
	lines := []string{
		SectionUserProfile,
		c.UserSummary,
		labeled("Demographics: ", c.Demographics),

		SectionContactBasics,
		"Name: " + c.ContactName,
		labeled("Follow-up cadence: ", c.FollowUpCadence),
		labeled("Last reach-out: ", c.LastReachOut),

		SectionContactSummary,
		c.ContactSummary,

		SectionInteraction,
		"[" + c.InteractionDate + "]",
		"- " + c.Notes,
		labeled("Tags: ", strings.Join(c.Tags, ", ")),

		SectionTone,
		string(c.Tone),
	}

	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimRight(line, " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// BuildInteractionContext compiles and renders p in one step. It is pure:
// the same payload always yields the same bytes.
func BuildInteractionContext(p Payload) string {
	return Compile(p).Render()
}

// NewPayload assembles a Payload from stored entities. The tone is resolved
// with models.ResolveTone, so a valid override wins over the contact's and
// the profile's preferences.
func NewPayload(profile *models.UserProfile, contact *models.Contact, event *models.Event, tone models.Tone) Payload {
	p := Payload{}

	if profile != nil {
		p.User.ProfileSummary = profile.BackgroundAISummary
		p.User.Demographics = profile.Demographics
	}
	p.User.Tone = string(models.ResolveTone(tone, contact, profile))

	if contact != nil {
		prefs := contact.ResolvedPreferences()
		p.Contact.Name = contact.Name
		p.Contact.ContactAISummary = contact.InfoAISummary
		p.Contact.FollowUpFrequency = prefs.FollowUpFrequency
		if contact.LastReachOutDate != nil {
			p.Contact.LastReachOutDate = contact.LastReachOutDate.UTC().Format(time.RFC3339)
		}
	}

	if event != nil {
		p.Interaction.DateISO = event.DateISO()
		p.Interaction.NotesAISummary = event.NotesAISummary
		p.Interaction.Tags = append([]string(nil), event.Tags...)
	}

	return p
}

func freeText(s string, max int) string {
	return Clamp(neutralize(Scrub(s)), max)
}

func neutralize(s string) string {
	return strings.TrimSpace(markerNeutralizer.Replace(s))
}

func labeled(label, value string) string {
	if value == "" {
		return ""
	}
	return label + value
}
