package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/vault/internal/config"
	"github.com/gorewood/vault/internal/vault"
)

type initFlags struct {
	strict    bool
	noAnchor  bool
	gitConfig string
}

func newInitCmd() *cobra.Command {
	flags := &initFlags{}
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create a vault, or check an existing one",
		Long: `Create the vault directory and a git repository inside it.

Running init on an existing vault only checks that git can read its status;
nothing is modified. When init creates the directory and a later step
fails, the directory is removed again.

A fresh vault gets its committer identity, status.showUntrackedFiles=all
and any --git-config pairs, then an "anchor" commit that records the
creation time in .vault.

Examples:
  vault init ~/vaults/main
  vault init --strict --git-config core.autocrlf=false,gc.auto=0
  vault init --no-anchor --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, args, flags)
		},
	}
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "Fail and roll back when a git config write fails")
	cmd.Flags().BoolVar(&flags.noAnchor, "no-anchor", false, "Skip the anchor commit")
	cmd.Flags().StringVar(&flags.gitConfig, "git-config", "", "Extra git config as key=value,key=value")
	return cmd
}

func runInit(cmd *cobra.Command, args []string, flags *initFlags) error {
	printer := newPrinter(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fail(printer, err)
	}
	var override string
	if len(args) == 1 {
		override = args[0]
	}
	path, err := vaultPath(cmd, cfg, override)
	if err != nil {
		return fail(printer, err)
	}

	var extra map[string]string
	if flags.gitConfig != "" {
		extra = config.ParseGitConfig(flags.gitConfig)
	}
	opts, err := cfg.Options(extra)
	if err != nil {
		return fail(printer, err)
	}
	if flags.strict {
		opts.Policy = vault.PolicyStrict
	}
	if flags.noAnchor {
		opts.Anchor = false
	}

	repo, err := vault.Initialize(cmd.Context(), path, opts)
	if err != nil {
		return fail(printer, err)
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"status": "ready",
			"vault":  repo.Root(),
			"policy": string(opts.Policy),
			"anchor": opts.Anchor,
		})
	}
	return printer.Success(map[string]any{"message": "Vault ready at " + repo.Root()})
}
