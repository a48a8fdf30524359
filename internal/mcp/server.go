// Package mcp provides a Model Context Protocol server for a vault.
// It exposes status, snapshot, restore and health operations as MCP tools.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/vault/internal/git"
)

// NewServer creates an MCP server with all vault tools registered.
// configSource is reported by the doctor tool; empty means defaults.
func NewServer(version string, repo *git.Locked, configSource string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "vault",
		Version: version,
	}, nil)
	registerTools(server, repo, configSource)
	return server
}

func boolPtr(b bool) *bool {
	return &b
}

func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// writeAnnotations marks tools that add commits and tags but never remove data.
func writeAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(false),
		OpenWorldHint:   boolPtr(false),
	}
}

// restoreAnnotations marks the restore tool, which overwrites working files.
func restoreAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(true),
		IdempotentHint:  true,
		OpenWorldHint:   boolPtr(false),
	}
}

func registerTools(server *mcp.Server, repo *git.Locked, configSource string) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "vault_status",
		Description: "List pending changes in the vault, one entry per path, with index and worktree status. Optionally limited to a path.",
		Annotations: readOnlyAnnotations(),
	}, handleStatus(repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "vault_snapshots",
		Description: "List snapshot tags in the vault, oldest first.",
		Annotations: readOnlyAnnotations(),
	}, handleSnapshots(repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "vault_snapshot",
		Description: "Commit every pending change and tag it with a timestamp. Does nothing when the vault is clean.",
		Annotations: writeAnnotations(),
	}, handleSnapshot(repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "vault_restore",
		Description: "Replace the vault's files with a snapshot (a snapshot tag, latest or anchor). History is kept; the restored state appears as pending changes. Refuses when changes are pending unless force is set.",
		Annotations: restoreAnnotations(),
	}, handleRestore(repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "vault_doctor",
		Description: "Run health checks on the vault: git availability, repository state, identity and untracked-files mode.",
		Annotations: readOnlyAnnotations(),
	}, handleDoctor(repo, configSource))
}
