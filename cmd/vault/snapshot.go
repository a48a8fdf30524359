package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/gorewood/vault/internal/vault"
)

func newSnapshotCmd() *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Commit all pending changes as a tagged snapshot",
		Long: `Record every pending change in one commit, tag it with the current
UTC time (2026-01-15T15-04-05Z) and move the "latest" tag to it.

A clean vault is left alone.

Examples:
  vault snapshot
  vault snapshot -m "before upgrade"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSnapshot(cmd, message)
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message (default \"snapshot <tag>\")")
	return cmd
}

func runSnapshot(cmd *cobra.Command, message string) error {
	printer := newPrinter(cmd)

	repo, _, err := openVault(cmd)
	if err != nil {
		return fail(printer, err)
	}

	res, err := vault.Snapshot(cmd.Context(), repo, vault.SnapshotOptions{Message: message})
	if err != nil {
		return fail(printer, err)
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"created": res.Created,
			"tag":     res.Tag,
			"commit":  res.Commit,
			"changes": len(res.Changes),
		})
	}
	if !res.Created {
		return printer.Success(map[string]any{"message": "Nothing to snapshot, vault is clean"})
	}
	return printer.Success(map[string]any{
		"message": fmt.Sprintf("Snapshot %s (%d change(s), %s)", res.Tag, len(res.Changes), shortSHA(res.Commit)),
	})
}

func newSnapshotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots",
		Short: "List recorded snapshots",
		Long: `List snapshots oldest first with their commit, date and subject.

The +/- columns count lines changed since the previous snapshot; the
first snapshot is compared with the anchor commit.

Examples:
  vault snapshots
  vault snapshots --json`,
		Args: cobra.NoArgs,
		RunE: runSnapshots,
	}
}

func runSnapshots(cmd *cobra.Command, _ []string) error {
	printer := newPrinter(cmd)

	repo, _, err := openVault(cmd)
	if err != nil {
		return fail(printer, err)
	}
	history, err := vault.History(cmd.Context(), repo)
	if err != nil {
		return fail(printer, err)
	}

	if printer.IsJSON() {
		snapshots := make([]map[string]any, 0, len(history))
		for _, s := range history {
			snapshots = append(snapshots, map[string]any{
				"tag":        s.Tag,
				"commit":     s.Commit.SHA,
				"subject":    s.Commit.Subject,
				"date":       s.Commit.Date.Format(time.RFC3339),
				"files":      s.Stat.Files,
				"insertions": s.Stat.Insertions,
				"deletions":  s.Stat.Deletions,
			})
		}
		return printer.Success(map[string]any{
			"count":     len(snapshots),
			"snapshots": snapshots,
		})
	}

	if len(history) == 0 {
		printer.Println("No snapshots yet")
		return nil
	}
	rows := make([][]string, 0, len(history))
	for _, s := range history {
		rows = append(rows, []string{
			s.Tag,
			shortSHA(s.Commit.SHA),
			strconv.Itoa(s.Stat.Files),
			fmt.Sprintf("+%d/-%d", s.Stat.Insertions, s.Stat.Deletions),
			s.Commit.Subject,
		})
	}
	printer.Table([]string{"TAG", "COMMIT", "FILES", "+/-", "SUBJECT"}, rows)
	return nil
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
