package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/gorewood/vault/internal/vault"
)

// PathEnv names the environment variable holding the vault path.
const PathEnv = "VAULT_PATH"

// DefaultDebounce is how long watch waits for the tree to settle.
const DefaultDebounce = 600 * time.Millisecond

// fileNames are tried in order inside Dir() by LoadDefault.
var fileNames = []string{"config.yaml", "config.yml", "config.toml"}

// ErrNoVaultPath is returned when no flag, env var or config names a vault.
var ErrNoVaultPath = errors.New("no vault path: pass --vault, set " + PathEnv + ", or set vault in the config file")

// Config is the on-disk configuration.
type Config struct {
	Vault        string            `yaml:"vault"         toml:"vault"`
	ConfigPolicy string            `yaml:"config_policy" toml:"config_policy"`
	Identity     vault.Identity    `yaml:"identity"      toml:"identity"`
	GitConfig    map[string]string `yaml:"git_config"    toml:"git_config"`
	Anchor       *bool             `yaml:"anchor"        toml:"anchor"`
	Watch        WatchConfig       `yaml:"watch"         toml:"watch"`

	// Source is the file the config was read from, empty for defaults.
	Source string `yaml:"-" toml:"-"`
}

// WatchConfig tunes the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" toml:"debounce"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ConfigPolicy: string(vault.PolicyBestEffort),
		Watch:        WatchConfig{Debounce: DefaultDebounce},
	}
}

// AnchorEnabled reports whether init records an anchor commit. Defaults to true.
func (c Config) AnchorEnabled() bool {
	return c.Anchor == nil || *c.Anchor
}

// Load reads a config file. The format follows the extension:
// .yaml and .yml use YAML, .toml uses TOML.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return Default(), fmt.Errorf("config %s: unsupported format %q (want .yaml, .yml or .toml)", path, filepath.Ext(path))
	}
	if err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Source = path

	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	if cfg.Vault, err = expandPath(cfg.Vault); err != nil {
		return Default(), fmt.Errorf("expand vault: %w", err)
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultDebounce
	}
	return cfg, nil
}

// LoadDefault loads the first config file found in Dir().
// Returns Default() without error when none exists.
func LoadDefault() (Config, error) {
	dir := Dir()
	if dir == "" {
		return Default(), nil
	}
	for _, name := range fileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Default(), fmt.Errorf("stat config %s: %w", path, err)
		}
		return Load(path)
	}
	return Default(), nil
}

// Validate checks field values. Paths must be absolute or start with ~.
func (c Config) Validate() error {
	if c.Vault != "" && c.Vault[0] != '~' && !filepath.IsAbs(c.Vault) {
		return fmt.Errorf("vault must be absolute or start with ~, got: %q", c.Vault)
	}
	if _, err := vault.ParsePolicy(c.ConfigPolicy); err != nil {
		return err
	}
	for key := range c.GitConfig {
		if !strings.Contains(strings.Trim(key, "."), ".") {
			return fmt.Errorf("git_config key %q must be section.name", key)
		}
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return nil
}

// ResolveVault picks the vault path: the flag wins, then $VAULT_PATH,
// then the config file. The result has ~ expanded and is absolute.
func (c Config) ResolveVault(flag string) (string, error) {
	path := flag
	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path == "" {
		path = c.Vault
	}
	if path == "" {
		return "", ErrNoVaultPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", fmt.Errorf("expand vault path: %w", err)
	}
	return filepath.Abs(expanded)
}

// Options builds Initialize options. Keys in extra override git_config.
func (c Config) Options(extra map[string]string) (vault.Options, error) {
	policy, err := vault.ParsePolicy(c.ConfigPolicy)
	if err != nil {
		return vault.Options{}, err
	}
	gitConfig := make(map[string]string, len(c.GitConfig)+len(extra))
	for k, v := range c.GitConfig {
		gitConfig[k] = v
	}
	for k, v := range extra {
		gitConfig[k] = v
	}
	return vault.Options{
		Identity:  c.Identity,
		GitConfig: gitConfig,
		Policy:    policy,
		Anchor:    c.AnchorEnabled(),
	}, nil
}
