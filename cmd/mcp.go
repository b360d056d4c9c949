package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentic-research/deckguard/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the mutation operations as MCP tools over stdio",
	Long: `Starts an MCP server on stdin/stdout exposing one tool per mutation
operation. Agents calling the tools go through the same guarded pipeline
as the CLI: path validation, locking, versioning, and approval gating.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, cleanup, err := newFacade()
		if err != nil {
			return err
		}
		defer cleanup()
		return mcpserver.New(f, appVersion).ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
