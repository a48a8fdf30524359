package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gorewood/vault/internal/doctor"
	"github.com/gorewood/vault/internal/output"
)

func newDoctorCmd() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check vault health and suggest fixes",
		Long: `Check that git is available and the vault is in a usable state.

Checks, in order:
  Config          - which config file is in use
  Git binary      - git can be run
  Vault directory - the vault path exists
  Repository      - the vault has a .git directory
  Status          - git status runs and parses
  Identity        - user.name and user.email resolve
  Untracked files - status.showUntrackedFiles is "all"

Exits with code 2 when any check fails.

Examples:
  vault doctor
  vault doctor --quiet     # only warnings and failures
  vault doctor --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, quiet)
		},
	}
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Only show failures and warnings")
	return cmd
}

func runDoctor(cmd *cobra.Command, quiet bool) error {
	printer := newPrinter(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fail(printer, err)
	}
	path, err := vaultPath(cmd, cfg, "")
	if err != nil {
		return fail(printer, err)
	}

	report := doctor.Run(cmd.Context(), doctor.Options{Path: path, ConfigSource: cfg.Source})

	if printer.IsJSON() {
		if err := printer.WriteJSON(report); err != nil {
			return err
		}
	} else {
		printer.Print("vault doctor %s\n\n", buildVersion())
		for _, check := range report.Checks {
			if quiet && check.Status == doctor.Pass {
				continue
			}
			printer.Check(string(check.Status), check.Name, check.Message)
			if check.Hint != "" {
				printer.Print("     -> %s\n", check.Hint)
			}
		}
		printer.Println()
		printer.Print("%d passed  %d warnings  %d failed\n",
			report.Summary.Passed, report.Summary.Warnings, report.Summary.Failed)
	}

	if !report.Healthy() {
		return output.NewSystemError(fmt.Sprintf("%d check(s) failed", report.Summary.Failed))
	}
	return nil
}
