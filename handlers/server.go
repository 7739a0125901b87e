// ABOUTME: MCP server assembly
// ABOUTME: Registers the contact and drafting tools on one server
package handlers

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer returns an MCP server exposing every nudge tool.
func NewServer(version string, contacts *ContactHandlers, drafts *DraftHandlers) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "nudge",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_contacts",
		Description: "Search contacts by name, optionally filtered to warm, cold or due for follow-up",
	}, contacts.FindContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_interaction",
		Description: "Log an interaction with a contact and update their last reach-out date",
	}, contacts.LogInteraction)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "compile_interaction_context",
		Description: "Build the scrubbed, size-bounded context block used to draft a follow-up for one interaction",
	}, drafts.CompileInteractionContext)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "draft_follow_up",
		Description: "Draft a follow-up message for one interaction through the chat proxy",
	}, drafts.DraftFollowUp)

	return server
}
