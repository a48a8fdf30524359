package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/vault/internal/doctor"
	"github.com/gorewood/vault/internal/export"
	"github.com/gorewood/vault/internal/git"
	"github.com/gorewood/vault/internal/vault"
)

// --- Status tool ---

// StatusInput is the input for the vault_status tool.
type StatusInput struct {
	Path string `json:"path,omitempty" jsonschema:"only report changes under this path, relative to the vault root"`
}

// StatusOutput is the output for the vault_status tool.
type StatusOutput struct {
	Vault   string          `json:"vault"   jsonschema:"vault root"`
	Clean   bool            `json:"clean"   jsonschema:"true when nothing is pending"`
	Count   int             `json:"count"   jsonschema:"number of changed paths"`
	Changes []export.Change `json:"changes" jsonschema:"changed paths in git status order"`
}

func handleStatus(repo *git.Locked) mcp.ToolHandlerFor[StatusInput, StatusOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, StatusOutput, error) {
		var entries []git.ChangeEntry
		err := repo.Do(func(r *git.Repo) error {
			var err error
			entries, err = r.Changes(ctx, input.Path)
			return err
		})
		if err != nil {
			return nil, StatusOutput{}, fmt.Errorf("reading status: %w", err)
		}

		changes := make([]export.Change, 0, len(entries))
		for _, e := range entries {
			changes = append(changes, export.ChangeFromEntry(e))
		}
		return nil, StatusOutput{
			Vault:   repo.Root(),
			Clean:   len(changes) == 0,
			Count:   len(changes),
			Changes: changes,
		}, nil
	}
}

// --- Snapshots tool ---

// SnapshotsInput is the input for the vault_snapshots tool (no parameters).
type SnapshotsInput struct{}

// SnapshotsOutput is the output for the vault_snapshots tool.
type SnapshotsOutput struct {
	Count     int               `json:"count"     jsonschema:"number of snapshots"`
	Snapshots []SnapshotSummary `json:"snapshots" jsonschema:"snapshots, oldest first"`
}

// SnapshotSummary is one entry of SnapshotsOutput.
type SnapshotSummary struct {
	Tag        string `json:"tag"        jsonschema:"snapshot tag"`
	Commit     string `json:"commit"     jsonschema:"commit SHA"`
	Subject    string `json:"subject"    jsonschema:"commit subject"`
	Date       string `json:"date"       jsonschema:"commit time, RFC 3339"`
	Files      int    `json:"files"      jsonschema:"files changed since the previous snapshot"`
	Insertions int    `json:"insertions" jsonschema:"lines added since the previous snapshot"`
	Deletions  int    `json:"deletions"  jsonschema:"lines removed since the previous snapshot"`
}

func handleSnapshots(repo *git.Locked) mcp.ToolHandlerFor[SnapshotsInput, SnapshotsOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ SnapshotsInput) (*mcp.CallToolResult, SnapshotsOutput, error) {
		var history []vault.SnapshotInfo
		err := repo.Do(func(r *git.Repo) error {
			var err error
			history, err = vault.History(ctx, r)
			return err
		})
		if err != nil {
			return nil, SnapshotsOutput{}, fmt.Errorf("listing snapshots: %w", err)
		}
		out := SnapshotsOutput{Count: len(history), Snapshots: make([]SnapshotSummary, 0, len(history))}
		for _, s := range history {
			out.Snapshots = append(out.Snapshots, SnapshotSummary{
				Tag:        s.Tag,
				Commit:     s.Commit.SHA,
				Subject:    s.Commit.Subject,
				Date:       s.Commit.Date.Format(time.RFC3339),
				Files:      s.Stat.Files,
				Insertions: s.Stat.Insertions,
				Deletions:  s.Stat.Deletions,
			})
		}
		return nil, out, nil
	}
}

// --- Snapshot tool ---

// SnapshotInput is the input for the vault_snapshot tool.
type SnapshotInput struct {
	Message string `json:"message,omitempty" jsonschema:"commit message (default: snapshot <tag>)"`
}

// SnapshotOutput is the output for the vault_snapshot tool.
type SnapshotOutput struct {
	Created bool   `json:"created"          jsonschema:"false when the vault was clean"`
	Tag     string `json:"tag,omitempty"    jsonschema:"snapshot tag"`
	Commit  string `json:"commit,omitempty" jsonschema:"snapshot commit SHA"`
	Changes int    `json:"changes"          jsonschema:"number of paths recorded"`
}

func handleSnapshot(repo *git.Locked) mcp.ToolHandlerFor[SnapshotInput, SnapshotOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SnapshotInput) (*mcp.CallToolResult, SnapshotOutput, error) {
		var res *vault.SnapshotResult
		err := repo.Do(func(r *git.Repo) error {
			var err error
			res, err = vault.Snapshot(ctx, r, vault.SnapshotOptions{Message: input.Message})
			return err
		})
		if err != nil {
			return nil, SnapshotOutput{}, fmt.Errorf("recording snapshot: %w", err)
		}
		return nil, SnapshotOutput{
			Created: res.Created,
			Tag:     res.Tag,
			Commit:  res.Commit,
			Changes: len(res.Changes),
		}, nil
	}
}

// --- Restore tool ---

// RestoreInput is the input for the vault_restore tool.
type RestoreInput struct {
	Tag   string `json:"tag"             jsonschema:"snapshot tag to restore, or latest or anchor"`
	Force bool   `json:"force,omitempty" jsonschema:"discard pending changes, untracked files included"`
}

// RestoreOutput is the output for the vault_restore tool.
type RestoreOutput struct {
	Tag     string          `json:"tag"     jsonschema:"restored tag"`
	Commit  string          `json:"commit"  jsonschema:"commit SHA the tag points at"`
	Count   int             `json:"count"   jsonschema:"number of paths now pending"`
	Changes []export.Change `json:"changes" jsonschema:"pending changes after the restore"`
}

func handleRestore(repo *git.Locked) mcp.ToolHandlerFor[RestoreInput, RestoreOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RestoreInput) (*mcp.CallToolResult, RestoreOutput, error) {
		var res *vault.RestoreResult
		err := repo.Do(func(r *git.Repo) error {
			var err error
			res, err = vault.Restore(ctx, r, input.Tag, vault.RestoreOptions{Force: input.Force})
			return err
		})
		if err != nil {
			return nil, RestoreOutput{}, fmt.Errorf("restoring snapshot: %w", err)
		}
		changes := make([]export.Change, 0, len(res.Changes))
		for _, e := range res.Changes {
			changes = append(changes, export.ChangeFromEntry(e))
		}
		return nil, RestoreOutput{Tag: res.Tag, Commit: res.Commit, Count: len(changes), Changes: changes}, nil
	}
}

// --- Doctor tool ---

// DoctorInput is the input for the vault_doctor tool (no parameters).
type DoctorInput struct{}

func handleDoctor(repo *git.Locked, configSource string) mcp.ToolHandlerFor[DoctorInput, doctor.Report] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ DoctorInput) (*mcp.CallToolResult, doctor.Report, error) {
		var report doctor.Report
		_ = repo.Do(func(r *git.Repo) error {
			report = doctor.Run(ctx, doctor.Options{
				Path:         r.Root(),
				GitBinary:    r.Binary(),
				ConfigSource: configSource,
			})
			return nil
		})
		return nil, report, nil
	}
}
