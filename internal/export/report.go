package export

import (
	"time"

	"github.com/gorewood/vault/internal/git"
)

// Schema identifies the report layout.
const Schema = "vault.status/v1"

// Report is one status run over a vault.
type Report struct {
	Schema    string    `json:"schema"`
	Vault     string    `json:"vault"`
	Generated time.Time `json:"generated"`
	Snapshot  string    `json:"snapshot,omitempty"`
	Clean     bool      `json:"clean"`
	Changes   []Change  `json:"changes"`
}

// Change is a ChangeEntry with its codes spelled out. Code keeps the
// two porcelain letters, e.g. "R " or "??". Path is the current path;
// Original is set for renames and copies.
type Change struct {
	Code     string `json:"code"`
	Index    string `json:"index"`
	Tree     string `json:"tree"`
	Path     string `json:"path"`
	Original string `json:"original,omitempty"`
}

// NewReport builds a report. snapshot is the most recent snapshot tag, or
// empty when the vault has none.
func NewReport(root, snapshot string, entries []git.ChangeEntry, now time.Time) Report {
	changes := make([]Change, 0, len(entries))
	for _, e := range entries {
		changes = append(changes, ChangeFromEntry(e))
	}
	return Report{
		Schema:    Schema,
		Vault:     root,
		Generated: now.UTC().Truncate(time.Second),
		Snapshot:  snapshot,
		Clean:     len(entries) == 0,
		Changes:   changes,
	}
}

// ChangeFromEntry converts a parsed status entry.
func ChangeFromEntry(e git.ChangeEntry) Change {
	return Change{
		Code:     e.Code(),
		Index:    e.Index.String(),
		Tree:     e.Tree.String(),
		Path:     e.Path(),
		Original: e.OrigPath(),
	}
}
