// ABOUTME: Tests for the drafting assistant
// ABOUTME: Uses an in-memory store and a recording chatter in place of the proxy
package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/nudge/chat"
	"github.com/harperreed/nudge/compiler"
	"github.com/harperreed/nudge/models"
)

type memStore struct {
	profile  *models.UserProfile
	contacts map[uuid.UUID]*models.Contact
	events   map[uuid.UUID]*models.Event
}

func (m *memStore) GetUserProfile(ctx context.Context) (*models.UserProfile, error) {
	if m.profile == nil {
		return nil, models.ErrNotFound
	}
	return m.profile, nil
}

func (m *memStore) GetContact(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	if c, ok := m.contacts[id]; ok {
		return c, nil
	}
	return nil, models.ErrNotFound
}

func (m *memStore) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	if e, ok := m.events[id]; ok {
		return e, nil
	}
	return nil, models.ErrNotFound
}

func (m *memStore) ListEventsByContact(ctx context.Context, contactID uuid.UUID) ([]models.Event, error) {
	var out []models.Event
	for _, e := range m.events {
		if e.ContactID == contactID {
			out = append(out, *e)
		}
	}
	return out, nil
}

type recordingChatter struct {
	requests []chat.Request
	answer   string
	err      error
}

func (r *recordingChatter) Chat(ctx context.Context, req chat.Request) (*chat.Response, error) {
	r.requests = append(r.requests, req)
	if r.err != nil {
		return nil, r.err
	}
	return &chat.Response{Answer: r.answer}, nil
}

type fixture struct {
	store   *memStore
	chatter *recordingChatter
	asst    *Assistant
	contact *models.Contact
	event   *models.Event
}

func newFixture() *fixture {
	contact := &models.Contact{
		ID:            uuid.New(),
		Name:          "Sam Rivera",
		InfoAISummary: "Product lead at a health startup. Reach me at sam@example.com",
		Preferences:   models.ContactPreferences{FollowUpFrequency: models.FrequencyThreeMonths},
	}
	event := &models.Event{
		ID:             uuid.New(),
		ContactID:      contact.ID,
		NotesAISummary: "Talked about AI in healthcare.",
		Date:           time.Date(2025, 5, 2, 15, 0, 0, 0, time.UTC),
		Tags:           []string{"Coffee"},
	}
	store := &memStore{
		profile: &models.UserProfile{
			Name:                "Ada",
			BackgroundAISummary: "Engineer exploring health tech.",
			Preferences:         models.ProfilePreferences{MessageTone: models.ToneSincere},
		},
		contacts: map[uuid.UUID]*models.Contact{contact.ID: contact},
		events:   map[uuid.UUID]*models.Event{event.ID: event},
	}
	chatter := &recordingChatter{answer: "  Hi Sam, thanks for the chat!  "}
	return &fixture{
		store:   store,
		chatter: chatter,
		asst:    New(store, chatter, nil),
		contact: contact,
		event:   event,
	}
}

func (f *fixture) chatContext(tone models.Tone) models.ChatContext {
	return models.OpenChat(&f.contact.ID, &f.event.ID, tone)
}

func TestDraftFollowUpSendsCompiledContext(t *testing.T) {
	f := newFixture()

	answer, err := f.asst.DraftFollowUp(context.Background(), f.chatContext(""), "  Thank them and suggest a call  ")
	require.NoError(t, err)
	assert.Equal(t, "Hi Sam, thanks for the chat!", answer)

	require.Len(t, f.chatter.requests, 1)
	msgs := f.chatter.requests[0].Messages
	require.Len(t, msgs, 3)

	assert.Equal(t, chat.RoleSystem, msgs[0].Role)
	assert.Equal(t, compiler.FollowUpChatPrompt, msgs[0].Content)

	assert.Equal(t, chat.RoleUser, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "Name: Sam Rivera")
	assert.Contains(t, msgs[1].Content, "Follow-up cadence: 3 Months")
	assert.NotContains(t, msgs[1].Content, "sam@example.com")
	assert.True(t, strings.HasSuffix(msgs[1].Content, "[TONE]\nsincere"), "profile tone applies")

	assert.Equal(t, "Thank them and suggest a call", msgs[2].Content)

	for _, m := range msgs {
		assert.NotEmpty(t, strings.TrimSpace(m.Content))
	}
}

func TestDraftToneOverride(t *testing.T) {
	f := newFixture()

	msgs, err := f.asst.DraftMessages(context.Background(), f.chatContext(models.ToneCasual), "go")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(msgs[1].Content, "[TONE]\ncasual"))
}

func TestDraftUsesContactTone(t *testing.T) {
	f := newFixture()
	f.contact.Preferences.MessageTone = models.ToneCasual

	compiled, err := f.asst.CompileContext(context.Background(), f.chatContext(""))
	require.NoError(t, err)
	assert.Equal(t, models.ToneCasual, compiled.Tone, "contact tone beats the profile's")

	compiled, err = f.asst.CompileContext(context.Background(), f.chatContext(models.ToneProfessional))
	require.NoError(t, err)
	assert.Equal(t, models.ToneProfessional, compiled.Tone, "override beats the contact's tone")
}

func TestDraftWithoutProfileDefaultsTone(t *testing.T) {
	f := newFixture()
	f.store.profile = nil

	msgs, err := f.asst.DraftMessages(context.Background(), f.chatContext(""), "go")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(msgs[1].Content, "[TONE]\nprofessional"))
}

func TestDraftMissingContext(t *testing.T) {
	f := newFixture()

	_, err := f.asst.DraftFollowUp(context.Background(), models.OpenChat(&f.contact.ID, nil, ""), "hi")
	assert.ErrorIs(t, err, ErrMissingContext)
	assert.Equal(t, ReplyMissingContext, Reply(err))
	assert.Empty(t, f.chatter.requests)
}

func TestDraftUnknownEntities(t *testing.T) {
	f := newFixture()
	ghost := uuid.New()

	_, err := f.asst.DraftFollowUp(context.Background(), models.OpenChat(&f.contact.ID, &ghost, ""), "hi")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, ReplyNotFound, Reply(err))

	other := &models.Contact{ID: uuid.New(), Name: "Kim"}
	f.store.contacts[other.ID] = other
	_, err = f.asst.DraftFollowUp(context.Background(), models.OpenChat(&other.ID, &f.event.ID, ""), "hi")
	assert.ErrorIs(t, err, models.ErrNotFound, "event must belong to the contact")

	assert.Empty(t, f.chatter.requests)
}

func TestDraftEmptyInstruction(t *testing.T) {
	f := newFixture()
	_, err := f.asst.DraftFollowUp(context.Background(), f.chatContext(""), "   ")
	assert.ErrorIs(t, err, ErrEmptyInstruction)
}

func TestDraftChatFailure(t *testing.T) {
	f := newFixture()
	f.chatter.err = chat.ErrTimeout

	_, err := f.asst.DraftFollowUp(context.Background(), f.chatContext(""), "hi")
	assert.ErrorIs(t, err, chat.ErrTimeout)
	assert.Equal(t, ReplyFailed, Reply(err))
	assert.Empty(t, Reply(nil))
}

func TestGreeting(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	assert.Equal(t,
		"Hi Ada, happy to help you draft a follow-up message to Sam Rivera with a casual tone. What would you like to say?",
		f.asst.Greeting(ctx, f.chatContext(models.ToneCasual)))

	assert.Equal(t,
		"Hi Ada, happy to help you draft a follow-up message to Sam Rivera with a sincere tone. What would you like to say?",
		f.asst.Greeting(ctx, f.chatContext("")))

	f.contact.Preferences.MessageTone = models.ToneCasual
	assert.Contains(t, f.asst.Greeting(ctx, f.chatContext("")), "with a casual tone")

	assert.Equal(t, "Hello, Ada. What can I help you with your networking needs today?",
		f.asst.Greeting(ctx, models.ChatContext{IsOpen: true}))

	f.store.profile = nil
	ghost := uuid.New()
	assert.Equal(t, "Hello, there. What can I help you with your networking needs today?",
		f.asst.Greeting(ctx, models.OpenChat(&ghost, nil, "")))
}

func TestSummarizeBackground(t *testing.T) {
	f := newFixture()
	f.chatter.answer = "**Background**\n1. Engineer"

	got, err := f.asst.SummarizeBackground(context.Background(), "I build things. Mail me: ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "**Background**\n1. Engineer", got)

	msgs := f.chatter.requests[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, compiler.OnboardingSummaryPrompt, msgs[0].Content)
	assert.NotContains(t, msgs[1].Content, "ada@example.com")

	_, err = f.asst.SummarizeBackground(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyInstruction)
}

func TestSummarizeInteraction(t *testing.T) {
	f := newFixture()
	f.chatter.answer = "```json\n" + `{"contact_short":"Health PM","contact":"**Background**\n1. PM","event_short":"Coffee chat","event":"**Topics**\n1. AI"}` + "\n```"

	got, err := f.asst.SummarizeInteraction(context.Background(), "Met Sam (+1 415 555 0100) for coffee")
	require.NoError(t, err)
	assert.Equal(t, &InteractionSummary{
		ContactShort: "Health PM",
		Contact:      "**Background**\n1. PM",
		EventShort:   "Coffee chat",
		Event:        "**Topics**\n1. AI",
	}, got)

	msgs := f.chatter.requests[0].Messages
	require.Len(t, msgs, 3)
	assert.Equal(t, "Engineer exploring health tech.", msgs[0].Content)
	assert.Equal(t, compiler.InteractionSummaryPrompt, msgs[1].Content)
	assert.NotContains(t, msgs[2].Content, "555")
}

func TestSummarizeInteractionBadJSON(t *testing.T) {
	f := newFixture()
	f.chatter.answer = "Sure! Here is a summary."

	_, err := f.asst.SummarizeInteraction(context.Background(), "notes")
	assert.ErrorIs(t, err, ErrBadSummary)

	f.chatter.answer = `{"contact_short":"x"}`
	_, err = f.asst.SummarizeInteraction(context.Background(), "notes")
	assert.ErrorIs(t, err, ErrBadSummary)
}

func TestSummarizeInteractionPropagatesChatErrors(t *testing.T) {
	f := newFixture()
	f.chatter.err = errors.New("boom")

	_, err := f.asst.SummarizeInteraction(context.Background(), "notes")
	assert.ErrorContains(t, err, "boom")
}
