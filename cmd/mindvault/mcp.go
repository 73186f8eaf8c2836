package main

import (
	"errors"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mcpTransport "github.com/kailas-cloud/mindvault/internal/transport/mcp"
	"github.com/kailas-cloud/mindvault/internal/version"
)

func newMCPCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the vault to LLM agents over stdio (Model Context Protocol)",
		Long: `Runs mindvault as an MCP server on stdio with the tools
search_items, save_item and list_items, acting as a single owner.
Logs go to stderr so they never corrupt the protocol stream.`,
		Example: `  # claude_desktop_config.json:
  # {"mcpServers": {"mindvault": {"command": "mindvault", "args": ["mcp", "--owner", "alice"]}}}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if owner == "" {
				return errors.New("--owner is required")
			}
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, err := buildApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			server := mcpserver.NewMCPServer("mindvault", version.Version)
			handlers := mcpTransport.NewHandlers(a.search, a.items, owner, logger).
				WithLocation(cfg.Search.Location()).
				WithListLimit(cfg.Search.DefaultRecent)
			mcpTransport.RegisterTools(server, handlers)

			logger.Info("MCP server starting on stdio", zap.String("owner", owner))
			if err := mcpserver.ServeStdio(server); err != nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner key every tool acts as (required)")
	return cmd
}
