// ABOUTME: AI summaries of the user's background and of raw interaction notes
// ABOUTME: Inputs are scrubbed and clamped to the proxy's content limit before sending
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/nudge/chat"
	"github.com/harperreed/nudge/compiler"
)

// MaxInputChars matches the proxy's per-message content limit.
const MaxInputChars = 4000

// ErrBadSummary means the model did not return the expected JSON object.
var ErrBadSummary = errors.New("model returned an unreadable summary")

// InteractionSummary is the structured result of SummarizeInteraction.
type InteractionSummary struct {
	ContactShort string `json:"contact_short"`
	Contact      string `json:"contact"`
	EventShort   string `json:"event_short"`
	Event        string `json:"event"`
}

// SummarizeBackground turns the user's self description into a career summary.
func (a *Assistant) SummarizeBackground(ctx context.Context, description string) (string, error) {
	text := compiler.Clamp(compiler.Scrub(description), MaxInputChars)
	if text == "" {
		return "", ErrEmptyInstruction
	}

	resp, err := a.chat.Chat(ctx, chat.Request{Messages: []chat.Message{
		{Role: chat.RoleSystem, Content: compiler.OnboardingSummaryPrompt},
		{Role: chat.RoleUser, Content: text},
	}})
	if err != nil {
		return "", fmt.Errorf("summarize background: %w", err)
	}
	return strings.TrimSpace(resp.Answer), nil
}

// SummarizeInteraction splits raw meeting notes into person and event summaries.
func (a *Assistant) SummarizeInteraction(ctx context.Context, notes string) (*InteractionSummary, error) {
	text := compiler.Clamp(compiler.Scrub(notes), MaxInputChars)
	if text == "" {
		return nil, ErrEmptyInstruction
	}

	profile, err := a.profile(ctx)
	if err != nil {
		return nil, err
	}
	about := ""
	if profile != nil {
		about = compiler.Clamp(compiler.Scrub(profile.BackgroundAISummary), compiler.MaxUserSummary)
	}

	msgs := make([]chat.Message, 0, 3)
	if about != "" {
		msgs = append(msgs, chat.Message{Role: chat.RoleUser, Content: about})
	}
	msgs = append(msgs,
		chat.Message{Role: chat.RoleSystem, Content: compiler.InteractionSummaryPrompt},
		chat.Message{Role: chat.RoleUser, Content: text},
	)

	resp, err := a.chat.Chat(ctx, chat.Request{Messages: msgs})
	if err != nil {
		return nil, fmt.Errorf("summarize interaction: %w", err)
	}
	return parseInteractionSummary(resp.Answer)
}

func parseInteractionSummary(answer string) (*InteractionSummary, error) {
	raw := stripFences(answer)

	var s InteractionSummary
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSummary, err)
	}
	if s.Contact == "" && s.Event == "" {
		return nil, fmt.Errorf("%w: no summaries", ErrBadSummary)
	}
	return &s, nil
}

// stripFences removes a surrounding ``` block, which models add despite
// being asked not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
