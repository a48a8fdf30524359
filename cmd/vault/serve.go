package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/gorewood/vault/internal/git"
	vaultmcp "github.com/gorewood/vault/internal/mcp"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run vault as a Model Context Protocol (MCP) server over stdio.

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "vault": {
        "command": "vault",
        "args": ["serve", "--vault", "/srv/vault"]
      }
    }
  }

Available tools: vault_status, vault_snapshots, vault_snapshot, vault_restore,
vault_doctor`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, cfg, err := openVault(cmd)
			if err != nil {
				return fail(newPrinter(cmd), err)
			}
			server := vaultmcp.NewServer(buildVersion(), git.NewLocked(repo), cfg.Source)
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
