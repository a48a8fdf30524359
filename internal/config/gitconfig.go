package config

import (
	"strings"

	"github.com/gorewood/vault/internal/vault"
)

// ParseGitConfig parses a "key=value,key=value" list as given to
// `vault init --git-config`. The result always carries
// status.showUntrackedFiles, defaulting to "all" unless the list sets it.
// Pairs without "=" or with an empty key are skipped.
func ParseGitConfig(s string) map[string]string {
	out := map[string]string{vault.UntrackedFilesKey: "all"}
	for pair := range strings.SplitSeq(s, ",") {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return out
}
