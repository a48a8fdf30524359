package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gorewood/vault/internal/output"
	"github.com/gorewood/vault/internal/vault"
)

// Formats accepted by WriteFile.
const (
	FormatNameJSON     = "json"
	FormatNameMarkdown = "md"
)

// WriteFile writes the report into dir as status-<tag>.<format> and
// returns the file path. dir is created if needed.
func WriteFile(report Report, dir, format string) (string, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatNameJSON:
		data, err = marshalJSON(report)
	case FormatNameMarkdown:
		var md string
		md, err = FormatMarkdown(report)
		data = []byte(md)
	default:
		return "", output.NewUserError(fmt.Sprintf("unknown export format %q (want %q or %q)", format, FormatNameJSON, FormatNameMarkdown))
	}
	if err != nil {
		return "", output.NewSystemErrorWithCause("failed to render report", err)
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", output.NewSystemErrorWithCause(fmt.Sprintf("failed to create %s", dir), err)
	}
	path := filepath.Join(dir, "status-"+vault.TagName(report.Generated)+"."+format)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", output.NewSystemErrorWithCause(fmt.Sprintf("failed to write file %s", path), err)
	}
	return path, nil
}
