package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/vault/internal/export"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [path]",
		Short: "Show pending changes in the vault",
		Long: `Show every changed path in the vault, one line per path.

Each line carries the two status letters git uses (index, then worktree)
followed by the path; renames and copies show "old -> new", with the
new name last. Untracked directories are listed file by file.

Examples:
  vault status               # whole vault
  vault status docs          # only paths under docs/
  vault status --json        # structured output for scripting`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	repo, _, err := openVault(cmd)
	if err != nil {
		return fail(printer, err)
	}
	var filter string
	if len(args) == 1 {
		filter = args[0]
	}

	entries, err := repo.Changes(cmd.Context(), filter)
	if err != nil {
		return fail(printer, err)
	}

	if printer.IsJSON() {
		changes := make([]export.Change, 0, len(entries))
		for _, e := range entries {
			changes = append(changes, export.ChangeFromEntry(e))
		}
		return printer.Success(map[string]any{
			"vault":   repo.Root(),
			"clean":   len(entries) == 0,
			"changes": changes,
		})
	}
	printer.Changes(entries)
	return nil
}
