// ABOUTME: MCP server subcommand
// ABOUTME: Serves the nudge tools over stdio for desktop assistants
package cli

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harperreed/nudge/handlers"
)

func newMCPCommand(a *app, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asst, store, err := a.assistant()
			if err != nil {
				return err
			}

			server := handlers.NewServer(version,
				handlers.NewContactHandlers(store),
				handlers.NewDraftHandlers(asst),
			)

			a.logger.Info("starting MCP server", zap.String("db", a.cfg.DBPath))
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
