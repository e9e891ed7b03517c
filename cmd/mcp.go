package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Alb-O/ruskel/internal/config"
	"github.com/Alb-O/ruskel/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as an MCP server over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		applyConfig(cmd.Root(), cfg)

		return mcp.NewServer(newRuskel()).Run()
	},
}
