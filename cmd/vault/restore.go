package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/vault/internal/export"
	"github.com/gorewood/vault/internal/vault"
)

func newRestoreCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "restore <tag>",
		Short: "Bring the vault's files back to a snapshot",
		Long: `Replace the files in the vault with the content of a snapshot.

The tag may be a snapshot tag from 'vault snapshots', "latest" or
"anchor". History is not rewritten: the restored files show up as
pending changes, and the next 'vault snapshot' records them.

A vault with pending changes is refused (exit 3) so nothing unrecorded
is lost. --force discards them, untracked files included.

Examples:
  vault restore latest
  vault restore 2026-01-15T15-04-05Z
  vault restore 2026-01-15T15-04-05Z --force --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(cmd, args[0], force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Discard pending changes before restoring")
	return cmd
}

func runRestore(cmd *cobra.Command, tag string, force bool) error {
	printer := newPrinter(cmd)

	repo, _, err := openVault(cmd)
	if err != nil {
		return fail(printer, err)
	}

	res, err := vault.Restore(cmd.Context(), repo, tag, vault.RestoreOptions{Force: force})
	if err != nil {
		return fail(printer, err)
	}

	if printer.IsJSON() {
		changes := make([]export.Change, 0, len(res.Changes))
		for _, e := range res.Changes {
			changes = append(changes, export.ChangeFromEntry(e))
		}
		return printer.Success(map[string]any{
			"tag":     res.Tag,
			"commit":  res.Commit,
			"changes": changes,
		})
	}
	printer.Print("Restored %s (%s)\n", res.Tag, shortSHA(res.Commit))
	if len(res.Changes) == 0 {
		printer.Println("Vault already matches the snapshot")
		return nil
	}
	printer.Changes(res.Changes)
	printer.Stderr("Run 'vault snapshot' to record the restored state (%d change(s))\n", len(res.Changes))
	return nil
}
