// ABOUTME: Drafting MCP tool handlers
// ABOUTME: Implements compile_interaction_context and draft_follow_up via the assistant
package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/nudge/compiler"
	"github.com/harperreed/nudge/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Drafter is the part of assistant.Assistant the drafting tools use.
type Drafter interface {
	CompileContext(ctx context.Context, cc models.ChatContext) (compiler.Compiled, error)
	DraftFollowUp(ctx context.Context, cc models.ChatContext, instruction string) (string, error)
}

type DraftHandlers struct {
	drafter Drafter
}

func NewDraftHandlers(drafter Drafter) *DraftHandlers {
	return &DraftHandlers{drafter: drafter}
}

type InteractionInput struct {
	ContactID string `json:"contact_id" jsonschema:"Contact ID (required)"`
	EventID   string `json:"event_id" jsonschema:"Interaction event ID (required)"`
	Tone      string `json:"tone,omitempty" jsonschema:"Tone override: professional, casual or sincere"`
}

type CompileContextOutput struct {
	Context  string            `json:"context"`
	Compiled compiler.Compiled `json:"compiled"`
}

func (h *DraftHandlers) CompileInteractionContext(ctx context.Context, _ *mcp.CallToolRequest, input InteractionInput) (*mcp.CallToolResult, CompileContextOutput, error) {
	cc, err := input.chatContext()
	if err != nil {
		return nil, CompileContextOutput{}, err
	}

	compiled, err := h.drafter.CompileContext(ctx, cc)
	if err != nil {
		return nil, CompileContextOutput{}, fmt.Errorf("failed to compile context: %w", err)
	}

	return nil, CompileContextOutput{Context: compiled.Render(), Compiled: compiled}, nil
}

type DraftFollowUpInput struct {
	ContactID   string `json:"contact_id" jsonschema:"Contact ID (required)"`
	EventID     string `json:"event_id" jsonschema:"Interaction event ID (required)"`
	Tone        string `json:"tone,omitempty" jsonschema:"Tone override: professional, casual or sincere"`
	Instruction string `json:"instruction" jsonschema:"What the follow-up should say or do (required)"`
}

type DraftFollowUpOutput struct {
	Draft string `json:"draft"`
}

func (h *DraftHandlers) DraftFollowUp(ctx context.Context, _ *mcp.CallToolRequest, input DraftFollowUpInput) (*mcp.CallToolResult, DraftFollowUpOutput, error) {
	cc, err := InteractionInput{ContactID: input.ContactID, EventID: input.EventID, Tone: input.Tone}.chatContext()
	if err != nil {
		return nil, DraftFollowUpOutput{}, err
	}

	draft, err := h.drafter.DraftFollowUp(ctx, cc, input.Instruction)
	if err != nil {
		return nil, DraftFollowUpOutput{}, fmt.Errorf("failed to draft follow-up: %w", err)
	}

	return nil, DraftFollowUpOutput{Draft: draft}, nil
}

func (in InteractionInput) chatContext() (models.ChatContext, error) {
	contactID, err := uuid.Parse(in.ContactID)
	if err != nil {
		return models.ChatContext{}, fmt.Errorf("invalid contact_id: %w", err)
	}
	eventID, err := uuid.Parse(in.EventID)
	if err != nil {
		return models.ChatContext{}, fmt.Errorf("invalid event_id: %w", err)
	}

	var tone models.Tone
	if in.Tone != "" {
		tone = models.Tone(in.Tone)
		if !tone.Valid() {
			return models.ChatContext{}, fmt.Errorf("invalid tone %q", in.Tone)
		}
	}
	return models.OpenChat(&contactID, &eventID, tone), nil
}
