package export

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type frontmatter struct {
	Schema    string    `yaml:"schema"`
	Vault     string    `yaml:"vault"`
	Generated time.Time `yaml:"generated"`
	Snapshot  string    `yaml:"snapshot,omitempty"`
	Changes   int       `yaml:"changes"`
}

// FormatMarkdown renders the report as a markdown document.
func FormatMarkdown(report Report) (string, error) {
	var builder strings.Builder

	fm, err := yaml.Marshal(frontmatter{
		Schema:    report.Schema,
		Vault:     report.Vault,
		Generated: report.Generated.UTC(),
		Snapshot:  report.Snapshot,
		Changes:   len(report.Changes),
	})
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	builder.WriteString("---\n")
	builder.Write(fm)
	builder.WriteString("---\n\n# Vault status\n\n")

	if report.Clean {
		builder.WriteString("No pending changes.\n")
		return builder.String(), nil
	}

	builder.WriteString("| Index | Tree | Path |\n|-------|------|------|\n")
	for _, c := range report.Changes {
		path := c.Path
		if c.Original != "" {
			path = c.Original + " -> " + c.Path
		}
		code := c.Code
		if len(code) != 2 {
			code = "  "
		}
		fmt.Fprintf(&builder, "| %c | %c | %s |\n", code[0], code[1], escapeCell(path))
	}
	return builder.String(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
