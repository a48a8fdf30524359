package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gorewood/vault/internal/vault"
)

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", `
vault: /srv/vault
config_policy: strict
identity:
  name: Backup Bot
  email: bot@example.com
git_config:
  commit.gpgsign: "false"
anchor: false
watch:
  debounce: 250ms
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Vault != "/srv/vault" {
		t.Errorf("Vault = %q", cfg.Vault)
	}
	if cfg.ConfigPolicy != "strict" {
		t.Errorf("ConfigPolicy = %q", cfg.ConfigPolicy)
	}
	if want := (vault.Identity{Name: "Backup Bot", Email: "bot@example.com"}); cfg.Identity != want {
		t.Errorf("Identity = %+v, want %+v", cfg.Identity, want)
	}
	if want := map[string]string{"commit.gpgsign": "false"}; !reflect.DeepEqual(cfg.GitConfig, want) {
		t.Errorf("GitConfig = %v, want %v", cfg.GitConfig, want)
	}
	if cfg.AnchorEnabled() {
		t.Error("AnchorEnabled() = true, want false")
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("Debounce = %v", cfg.Watch.Debounce)
	}
	if cfg.Source != path {
		t.Errorf("Source = %q, want %q", cfg.Source, path)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.toml", `
vault = "/srv/vault"

[identity]
name = "Backup Bot"
email = "bot@example.com"

[git_config]
"core.autocrlf" = "false"

[watch]
debounce = "2s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Vault != "/srv/vault" || cfg.Identity.Name != "Backup Bot" {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.ConfigPolicy != "best-effort" {
		t.Errorf("ConfigPolicy = %q, unset policy keeps the default", cfg.ConfigPolicy)
	}
	if cfg.GitConfig["core.autocrlf"] != "false" {
		t.Errorf("GitConfig = %v", cfg.GitConfig)
	}
	if !cfg.AnchorEnabled() {
		t.Error("anchor defaults to on")
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("Debounce = %v", cfg.Watch.Debounce)
	}
}

func TestLoad_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	path := writeConfig(t, t.TempDir(), "config.yml", "vault: ~/vaults/main\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := filepath.Join(home, "vaults", "main"); cfg.Vault != want {
		t.Errorf("Vault = %q, want %q", cfg.Vault, want)
	}
	if cfg.Watch.Debounce != DefaultDebounce {
		t.Errorf("Debounce = %v, want default", cfg.Watch.Debounce)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{name: "relative vault", file: "a.yaml", body: "vault: vaults/main\n", wantErr: "must be absolute"},
		{name: "bad policy", file: "b.yaml", body: "config_policy: lenient\n", wantErr: "unknown config policy"},
		{name: "bad git key", file: "c.toml", body: "[git_config]\nnosection = \"x\"\n", wantErr: "section.name"},
		{name: "negative debounce", file: "d.yaml", body: "watch:\n  debounce: -1s\n", wantErr: "must not be negative"},
		{name: "bad yaml", file: "e.yaml", body: "vault: [\n", wantErr: "parse config"},
		{name: "bad toml", file: "f.toml", body: "vault = \n", wantErr: "parse config"},
		{name: "unknown extension", file: "g.json", body: "{}", wantErr: "unsupported format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, dir, tt.file, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Load() error = %v, want %q", err, tt.wantErr)
			}
			if cfg.ConfigPolicy != Default().ConfigPolicy {
				t.Errorf("ConfigPolicy = %q, want the default on error", cfg.ConfigPolicy)
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestLoadDefault(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("LoadDefault() = %+v, no file yields defaults", cfg)
	}

	writeConfig(t, dir, "config.toml", "vault = \"/from/toml\"\n")
	cfg, err = LoadDefault()
	if err != nil || cfg.Vault != "/from/toml" {
		t.Errorf("Vault = %q, %v, want /from/toml", cfg.Vault, err)
	}

	// yaml wins over toml when both exist.
	writeConfig(t, dir, "config.yaml", "vault: /from/yaml\n")
	cfg, err = LoadDefault()
	if err != nil || cfg.Vault != "/from/yaml" {
		t.Errorf("Vault = %q, %v, want /from/yaml", cfg.Vault, err)
	}
}

func TestResolveVault(t *testing.T) {
	cfg := Config{Vault: "/from/config"}
	tests := []struct {
		name string
		env  string
		flag string
		want string
	}{
		{name: "config", want: "/from/config"},
		{name: "env beats config", env: "/from/env", want: "/from/env"},
		{name: "flag beats env", env: "/from/env", flag: "/from/flag", want: "/from/flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(PathEnv, tt.env)
			got, err := cfg.ResolveVault(tt.flag)
			if err != nil || got != tt.want {
				t.Errorf("ResolveVault(%q) = %q, %v, want %q", tt.flag, got, err, tt.want)
			}
		})
	}

	t.Setenv(PathEnv, "")
	if _, err := (Config{}).ResolveVault(""); !errors.Is(err, ErrNoVaultPath) {
		t.Errorf("ResolveVault() error = %v, want ErrNoVaultPath", err)
	}
}

func TestOptions(t *testing.T) {
	no := false
	cfg := Config{
		ConfigPolicy: "strict",
		Identity:     vault.Identity{Name: "n", Email: "e"},
		GitConfig:    map[string]string{"core.autocrlf": "false", "gc.auto": "0"},
		Anchor:       &no,
	}

	opts, err := cfg.Options(map[string]string{"gc.auto": "1", vault.UntrackedFilesKey: "all"})
	if err != nil {
		t.Fatalf("Options() error = %v", err)
	}
	if opts.Policy != vault.PolicyStrict || opts.Identity != cfg.Identity || opts.Anchor {
		t.Errorf("Options() = %+v", opts)
	}
	want := map[string]string{
		"core.autocrlf":         "false",
		"gc.auto":               "1",
		vault.UntrackedFilesKey: "all",
	}
	if !reflect.DeepEqual(opts.GitConfig, want) {
		t.Errorf("GitConfig = %v, want %v", opts.GitConfig, want)
	}
	if cfg.GitConfig["gc.auto"] != "0" || len(cfg.GitConfig) != 2 {
		t.Errorf("config map mutated: %v", cfg.GitConfig)
	}

	if _, err = (Config{ConfigPolicy: "nope"}).Options(nil); err == nil {
		t.Error("Options() accepted an unknown policy")
	}
}

func TestParseGitConfig(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]string
	}{
		{
			name: "empty keeps default",
			in:   "",
			want: map[string]string{vault.UntrackedFilesKey: "all"},
		},
		{
			name: "pairs",
			in:   "core.autocrlf=false, gc.auto = 0",
			want: map[string]string{vault.UntrackedFilesKey: "all", "core.autocrlf": "false", "gc.auto": "0"},
		},
		{
			name: "override untracked",
			in:   "status.showUntrackedFiles=normal",
			want: map[string]string{vault.UntrackedFilesKey: "normal"},
		},
		{
			name: "malformed skipped",
			in:   "novalue,=orphan,,a.b=c=d",
			want: map[string]string{vault.UntrackedFilesKey: "all", "a.b": "c=d"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseGitConfig(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseGitConfig(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
