package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/krr2020/taskflow-ai-sub003/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long: `Run a Model Context Protocol server exposing read-only project data
(tasks, the active task, the next eligible task, and retrospective search)
to AI coding assistants over stdio.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskStore == nil || Ledger == nil || Workflow == nil {
			return fmt.Errorf("services not initialized")
		}
		server := mcp.NewServer(TaskStore, Ledger, Workflow, appVersion)
		return server.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
