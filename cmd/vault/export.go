package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gorewood/vault/internal/export"
	"github.com/gorewood/vault/internal/output"
	"github.com/gorewood/vault/internal/vault"
)

type exportFlags struct {
	format string
	out    string
}

func newExportCmd() *cobra.Command {
	flags := &exportFlags{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export pending changes as JSON or markdown",
		Long: `Export the current status of the vault as a report.

The report names the vault, the latest snapshot and every pending change.
Without --out it is written to stdout; with --out it is written to
<dir>/status-<time>.json or .md.

Examples:
  vault export                         # JSON to stdout
  vault export --format md             # markdown to stdout
  vault export --format md --out ./reports`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, flags)
		},
	}
	cmd.Flags().StringVar(&flags.format, "format", export.FormatNameJSON, "Output format: json or md")
	cmd.Flags().StringVar(&flags.out, "out", "", "Write the report into this directory")
	return cmd
}

func runExport(cmd *cobra.Command, flags *exportFlags) error {
	printer := newPrinter(cmd)

	if flags.format != export.FormatNameJSON && flags.format != export.FormatNameMarkdown {
		return fail(printer, output.NewUserError(fmt.Sprintf("unknown format %q (want json or md)", flags.format)))
	}

	repo, _, err := openVault(cmd)
	if err != nil {
		return fail(printer, err)
	}
	ctx := cmd.Context()

	entries, err := repo.Changes(ctx, "")
	if err != nil {
		return fail(printer, err)
	}
	snapshots, err := vault.ListSnapshots(ctx, repo)
	if err != nil {
		return fail(printer, err)
	}
	var latest string
	if len(snapshots) > 0 {
		latest = snapshots[len(snapshots)-1]
	}
	report := export.NewReport(repo.Root(), latest, entries, time.Now())

	if flags.out != "" {
		path, err := export.WriteFile(report, flags.out, flags.format)
		if err != nil {
			return fail(printer, err)
		}
		if printer.IsJSON() {
			return printer.Success(map[string]any{"path": path, "changes": len(report.Changes)})
		}
		return printer.Success(map[string]any{"message": "Wrote " + path})
	}

	if flags.format == export.FormatNameJSON {
		return export.FormatJSON(printer, report)
	}
	md, err := export.FormatMarkdown(report)
	if err != nil {
		return fail(printer, output.NewSystemErrorWithCause("failed to render markdown", err))
	}
	printer.Print("%s", md)
	return nil
}
