package cmd

import (
	"github.com/huangsam/annofabcli/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the annofabcli MCP server",
	Long: `Launch an MCP server that lets AI agents read annotation specs and
translate annotation queries via standard tools. --project-id sets the
default project of every tool.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol, so nothing may be printed before serving.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		client, err := newClient(true)
		if err != nil {
			return err
		}
		return mcp.StartMCPServer(rootCtx, cfg, client)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
