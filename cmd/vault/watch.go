package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gorewood/vault/internal/export"
	"github.com/gorewood/vault/internal/git"
	"github.com/gorewood/vault/internal/output"
	"github.com/gorewood/vault/internal/vault"
	"github.com/gorewood/vault/internal/watch"
)

type watchFlags struct {
	snapshot bool
	debounce time.Duration
}

func newWatchCmd() *cobra.Command {
	flags := &watchFlags{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Report changes as they happen",
		Long: `Watch the vault directory and report pending changes each time the
tree settles. With --snapshot every settled burst is recorded as a
snapshot instead.

The quiet period comes from --debounce, then watch.debounce in the config
file, then 600ms. Stop with Ctrl-C.

Examples:
  vault watch
  vault watch --snapshot --debounce 5s
  vault watch --json        # one JSON object per settled burst`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, flags)
		},
	}
	cmd.Flags().BoolVar(&flags.snapshot, "snapshot", false, "Record a snapshot after each settled burst")
	cmd.Flags().DurationVar(&flags.debounce, "debounce", 0, "Quiet period before reporting")
	return cmd
}

func runWatch(cmd *cobra.Command, flags *watchFlags) error {
	printer := newPrinter(cmd)

	repo, cfg, err := openVault(cmd)
	if err != nil {
		return fail(printer, err)
	}
	debounce := flags.debounce
	if debounce <= 0 {
		debounce = cfg.Watch.Debounce
	}

	w, err := watch.New(repo.Root(), debounce)
	if err != nil {
		return fail(printer, output.NewSystemErrorWithCause("failed to start watcher", err))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printer.Stderr("Watching %s (Ctrl-C to stop)\n", repo.Root())
	handler := reportChanges(printer, repo)
	if flags.snapshot {
		handler = recordSnapshot(printer, repo)
	}
	return w.Run(ctx, handler)
}

func reportChanges(printer *output.Printer, repo *git.Repo) func(context.Context) error {
	return func(ctx context.Context) error {
		entries, err := repo.Changes(ctx, "")
		if err != nil {
			return err
		}
		if printer.IsJSON() {
			return export.FormatJSON(printer, export.NewReport(repo.Root(), "", entries, time.Now()))
		}
		printer.Section(time.Now().Format(time.TimeOnly))
		printer.Changes(entries)
		return nil
	}
}

func recordSnapshot(printer *output.Printer, repo *git.Repo) func(context.Context) error {
	return func(ctx context.Context) error {
		res, err := vault.Snapshot(ctx, repo, vault.SnapshotOptions{})
		if err != nil {
			printer.Error(err)
			return err
		}
		if !res.Created {
			return nil
		}
		if printer.IsJSON() {
			return printer.WriteJSON(map[string]any{
				"tag":     res.Tag,
				"commit":  res.Commit,
				"changes": len(res.Changes),
			})
		}
		printer.Print("Snapshot %s (%d change(s))\n", res.Tag, len(res.Changes))
		return nil
	}
}
