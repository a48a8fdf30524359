// Package main provides the entry point for the vault CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gorewood/vault/internal/config"
	"github.com/gorewood/vault/internal/envfile"
	"github.com/gorewood/vault/internal/log"
	"github.com/gorewood/vault/internal/output"
)

// Build info set via ldflags at build time by goreleaser.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

func main() {
	os.Exit(run())
}

func run() int {
	cmd := newRootCmd()
	err := fang.Execute(context.Background(), cmd, fang.WithVersion(buildVersion()))
	return output.GetExitCode(err)
}

// newRootCmd creates the root command for the vault CLI.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vault",
		Short: "A git-backed directory vault",
		Long: `Vault - keep a directory under git and record its state as snapshots.

A vault is a plain directory with a git repository inside it. Vault creates
it, reports pending changes one path at a time, and records tagged
snapshots you can list and export.

The vault path comes from --vault, then $VAULT_PATH, then the "vault" key
of the config file. All commands support --json for structured output.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isJSONMode(cmd) {
				printer := output.NewPrinter(cmd.OutOrStdout(), true, false)
				err := output.NewUserError("no command specified. Run 'vault --help' for usage")
				printer.Error(err)
				return err
			}
			return cmd.Help()
		},
	}

	// Env files first so VAULT_* variables from them reach config and logging.
	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		loadEnvFiles()
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger := log.New(cmd.ErrOrStderr(), log.LevelFromEnv(verbose))
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(log.WithLogger(ctx, logger))
		return nil
	}

	flags := cmd.PersistentFlags()
	flags.Bool("json", false, "Output in JSON format")
	flags.String("color", "auto", "Colorize output: auto, always, never")
	flags.Bool("verbose", false, "Log every git command to stderr")
	flags.StringP("vault", "V", "", "Vault directory (default $"+config.PathEnv+" or config)")
	flags.StringP("config", "c", "", "Config file (default "+filepath.Join("$"+config.HomeEnv, "config.yaml")+")")

	lipgloss.SetHasDarkBackground(true)

	addCommandGroups(cmd)
	addCommands(cmd)
	return cmd
}

// loadEnvFiles loads env files in priority order. First match for each
// variable wins; variables already in the environment always win.
//
//  1. $CWD/.env.local
//  2. $CWD/.env
//  3. <config dir>/env
func loadEnvFiles() {
	paths := []string{".env.local", ".env"}
	if dir := config.Dir(); dir != "" {
		paths = append(paths, filepath.Join(dir, "env"))
	}
	_, _ = envfile.Load(paths...)
}

func addCommandGroups(cmd *cobra.Command) {
	cmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "report", Title: "Report Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "admin", Title: "Admin Commands:"})
}

func addCommands(cmd *cobra.Command) {
	addGroupedCommand(cmd, newInitCmd(), "core")
	addGroupedCommand(cmd, newStatusCmd(), "core")
	addGroupedCommand(cmd, newSnapshotCmd(), "core")
	addGroupedCommand(cmd, newSnapshotsCmd(), "core")
	addGroupedCommand(cmd, newRestoreCmd(), "core")

	addGroupedCommand(cmd, newExportCmd(), "report")
	addGroupedCommand(cmd, newWatchCmd(), "report")

	addGroupedCommand(cmd, newDoctorCmd(), "admin")
	addGroupedCommand(cmd, newServeCmd(), "admin")
}

func addGroupedCommand(parent *cobra.Command, child *cobra.Command, groupID string) {
	child.GroupID = groupID
	parent.AddCommand(child)
}
