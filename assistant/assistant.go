// ABOUTME: Drafting assistant that turns stored entities into chat proxy calls
// ABOUTME: Compiles the interaction context, resolves tone and maps failures to user-facing replies
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harperreed/nudge/chat"
	"github.com/harperreed/nudge/compiler"
	"github.com/harperreed/nudge/models"
)

var (
	// ErrMissingContext means the chat was opened without a contact and event.
	ErrMissingContext = errors.New("missing interaction context")
	// ErrEmptyInstruction means the user sent nothing to act on.
	ErrEmptyInstruction = errors.New("empty instruction")
)

// Replies shown in place of a draft.
const (
	ReplyMissingContext = "I’m missing this interaction’s context. Please reopen the chat from the interaction page."
	ReplyNotFound       = "I couldn’t find the contact or interaction details. Please try again."
	ReplyFailed         = "Sorry—something went wrong generating your draft. Please try again."
)

// Store is the read side the assistant needs.
type Store interface {
	GetUserProfile(ctx context.Context) (*models.UserProfile, error)
	GetContact(ctx context.Context, id uuid.UUID) (*models.Contact, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListEventsByContact(ctx context.Context, contactID uuid.UUID) ([]models.Event, error)
}

// Chatter sends one chat request; *chat.Client satisfies it.
type Chatter interface {
	Chat(ctx context.Context, req chat.Request) (*chat.Response, error)
}

type Assistant struct {
	store  Store
	chat   Chatter
	logger *zap.Logger
}

func New(store Store, chatter Chatter, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{store: store, chat: chatter, logger: logger}
}

// Greeting is the first message of a drafting session.
func (a *Assistant) Greeting(ctx context.Context, cc models.ChatContext) string {
	name := "there"
	profile, err := a.profile(ctx)
	if err == nil && profile != nil && strings.TrimSpace(profile.Name) != "" {
		name = profile.Name
	}

	if cc.ContactID != nil {
		if contact, err := a.store.GetContact(ctx, *cc.ContactID); err == nil {
			tone := models.ResolveTone(cc.Tone, contact, profile)
			return fmt.Sprintf("Hi %s, happy to help you draft a follow-up message to %s with a %s tone. What would you like to say?",
				name, contact.Name, tone)
		}
	}
	return fmt.Sprintf("Hello, %s. What can I help you with your networking needs today?", name)
}

// CompileContext gathers the profile, contact and event named by cc and
// compiles them. The tone is cc's override, else the contact's, else the
// profile's. The result is rebuilt on every call.
func (a *Assistant) CompileContext(ctx context.Context, cc models.ChatContext) (compiler.Compiled, error) {
	if cc.ContactID == nil || cc.EventID == nil {
		return compiler.Compiled{}, ErrMissingContext
	}

	contact, err := a.store.GetContact(ctx, *cc.ContactID)
	if err != nil {
		return compiler.Compiled{}, fmt.Errorf("load contact: %w", err)
	}
	event, err := a.store.GetEvent(ctx, *cc.EventID)
	if err != nil {
		return compiler.Compiled{}, fmt.Errorf("load event: %w", err)
	}
	if event.ContactID != contact.ID {
		return compiler.Compiled{}, fmt.Errorf("event %s belongs to another contact: %w", event.ID, models.ErrNotFound)
	}

	profile, err := a.profile(ctx)
	if err != nil {
		return compiler.Compiled{}, err
	}

	return compiler.Compile(compiler.NewPayload(profile, contact, event, cc.Tone)), nil
}

// DraftMessages builds the message list for a follow-up draft: the fixed
// system prompt, the compiled context, then the user's instruction.
func (a *Assistant) DraftMessages(ctx context.Context, cc models.ChatContext, instruction string) ([]chat.Message, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, ErrEmptyInstruction
	}

	compiled, err := a.CompileContext(ctx, cc)
	if err != nil {
		return nil, err
	}

	return []chat.Message{
		{Role: chat.RoleSystem, Content: compiler.FollowUpChatPrompt},
		{Role: chat.RoleUser, Content: compiled.Render()},
		{Role: chat.RoleUser, Content: instruction},
	}, nil
}

// DraftFollowUp asks the proxy for one follow-up message.
func (a *Assistant) DraftFollowUp(ctx context.Context, cc models.ChatContext, instruction string) (string, error) {
	msgs, err := a.DraftMessages(ctx, cc, instruction)
	if err != nil {
		return "", err
	}

	resp, err := a.chat.Chat(ctx, chat.Request{Messages: msgs})
	if err != nil {
		a.logger.Warn("draft failed", zap.Error(err))
		return "", fmt.Errorf("draft follow-up: %w", err)
	}
	return strings.TrimSpace(resp.Answer), nil
}

// Reply maps a DraftFollowUp error to the text shown in the chat.
func Reply(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingContext):
		return ReplyMissingContext
	case errors.Is(err, models.ErrNotFound):
		return ReplyNotFound
	default:
		return ReplyFailed
	}
}

// profile returns the stored profile, or nil before onboarding.
func (a *Assistant) profile(ctx context.Context) (*models.UserProfile, error) {
	p, err := a.store.GetUserProfile(ctx)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}
