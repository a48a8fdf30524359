// Package export writes a vault's pending changes as a report.
//
// A Report captures one status run: the vault root, the snapshot it was
// taken against, and every change entry. Two formats are supported:
//
//   - JSON: the Report itself, for scripts and pipelines
//   - Markdown: YAML frontmatter plus a table of changes, for humans
//
// Example markdown output:
//
//	---
//	schema: vault.status/v1
//	vault: /srv/vault
//	generated: 2026-01-15T15:04:05Z
//	snapshot: 2026-01-15T15-00-00Z
//	changes: 2
//	---
//
//	# Vault status
//
//	| Index | Tree | Path |
//	|-------|------|------|
//	| ? | ? | notes.txt |
//	| R |   | a.txt -> b.txt |
//
// WriteFile names files status-<tag>.json or status-<tag>.md, where the tag
// is the report time in snapshot tag form.
package export
