// Package config loads vault settings from a YAML or TOML file in the
// user's configuration directory.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// HomeEnv overrides the configuration directory.
const HomeEnv = "VAULT_CONFIG_HOME"

// Dir returns the vault configuration directory.
//
// Resolution:
//   - $VAULT_CONFIG_HOME if set
//   - $XDG_CONFIG_HOME/vault if set (on any platform)
//   - %AppData%/vault on Windows
//   - ~/.config/vault elsewhere
func Dir() string {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "vault")
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "vault")
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "vault")
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) (string, error) {
	if path == "~" || len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
