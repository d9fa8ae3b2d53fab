package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/green-analyzer/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the working session, saved projects and share links to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		s, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		ctrl, err := newController(cfg, s)
		if err != nil {
			return err
		}
		if err := ctrl.Boot(ctx); err != nil {
			return err
		}
		// Agents read the last session as it was left.
		if ctrl.State().RestoreOffered {
			if err := ctrl.Restore(ctx, true); err != nil {
				return err
			}
		}
		defer ctrl.Close(ctx)

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "green-analyzer MCP server started on stdio (projects=%d)\n", len(s.projects.List()))

		srv := mcpserver.NewServer(ctrl, s.projects, cfg.ShareBase())
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
