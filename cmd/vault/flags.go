package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/vault/internal/config"
	"github.com/gorewood/vault/internal/git"
	"github.com/gorewood/vault/internal/output"
	"github.com/gorewood/vault/internal/vault"
)

// isJSONMode reads the --json persistent flag from the command hierarchy.
func isJSONMode(cmd *cobra.Command) bool {
	return boolFlag(cmd, "json")
}

func boolFlag(cmd *cobra.Command, name string) bool {
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup(name)
	}
	return flag != nil && flag.Value.String() == "true"
}

func stringFlag(cmd *cobra.Command, name string) string {
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup(name)
	}
	if flag == nil {
		return ""
	}
	return flag.Value.String()
}

// useColor resolves --color against TTY detection on stdout.
func useColor(cmd *cobra.Command) bool {
	return output.ResolveColorMode(stringFlag(cmd, "color"), output.IsTTY(cmd.OutOrStdout()))
}

// newPrinter builds the printer every command writes through.
func newPrinter(cmd *cobra.Command) *output.Printer {
	return output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd)).WithStderr(cmd.ErrOrStderr())
}

// loadConfig reads --config when given, otherwise the default location.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if path := stringFlag(cmd, "config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return cfg, &output.ExitError{Code: output.ExitUserError, Message: err.Error(), Cause: err}
	}
	return cfg, nil
}

// vaultPath resolves the vault directory. A positional argument, when the
// command takes one, is passed as override and wins over --vault.
func vaultPath(cmd *cobra.Command, cfg config.Config, override string) (string, error) {
	flag := override
	if flag == "" {
		flag = stringFlag(cmd, "vault")
	}
	path, err := cfg.ResolveVault(flag)
	if err != nil {
		return "", &output.ExitError{Code: output.ExitUserError, Message: err.Error(), Cause: err}
	}
	return path, nil
}

// openVault loads config and opens the existing vault it points at.
func openVault(cmd *cobra.Command) (*git.Repo, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	path, err := vaultPath(cmd, cfg, "")
	if err != nil {
		return nil, cfg, err
	}
	repo, err := vault.Open(path)
	if err != nil {
		return nil, cfg, err
	}
	return repo, cfg, nil
}

// fail prints err through the printer and returns it for the exit code.
func fail(printer *output.Printer, err error) error {
	printer.Error(err)
	return err
}
