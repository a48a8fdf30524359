package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/gorewood/vault/internal/git"
)

func TestPrinter_JSON_Success(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, true, false)

	err := printer.Success(map[string]any{
		"status": "created",
		"tag":    "2026-01-15T15-04-05Z",
	})
	if err != nil {
		t.Fatalf("Success() error = %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse JSON: %v\nOutput: %s", err, buf.String())
	}
	if result["status"] != "created" {
		t.Errorf("status = %v, want %q", result["status"], "created")
	}
	if result["tag"] != "2026-01-15T15-04-05Z" {
		t.Errorf("tag = %v, want %q", result["tag"], "2026-01-15T15-04-05Z")
	}
}

func TestPrinter_JSON_Error(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, true, false)

	printer.Error(NewUserError("no vault path configured"))

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse JSON: %v\nOutput: %s", err, buf.String())
	}
	if result["error"] != "no vault path configured" {
		t.Errorf("error = %v, want %q", result["error"], "no vault path configured")
	}
	if code, ok := result["code"].(float64); !ok || int(code) != ExitUserError {
		t.Errorf("code = %v, want %d", result["code"], ExitUserError)
	}
}

func TestPrinter_Human_SuccessMessage(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	if err := printer.Success(map[string]any{"message": "Vault ready"}); err != nil {
		t.Fatalf("Success() error = %v", err)
	}
	if got := buf.String(); got != "Vault ready\n" {
		t.Errorf("output = %q, want %q", got, "Vault ready\n")
	}
}

func TestPrinter_Human_SuccessSortedKeys(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	if err := printer.Success(map[string]any{"path": "/v", "created": true}); err != nil {
		t.Fatalf("Success() error = %v", err)
	}
	want := "created: true\npath: /v\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestPrinter_Human_ErrorGoesToStderr(t *testing.T) {
	var out, errOut bytes.Buffer
	printer := NewPrinter(&out, false, false).WithStderr(&errOut)

	printer.Error(NewSystemError("git not found"))

	if out.Len() != 0 {
		t.Errorf("stdout should be empty, got %q", out.String())
	}
	if got := errOut.String(); got != "Error: git not found\n" {
		t.Errorf("stderr = %q, want %q", got, "Error: git not found\n")
	}
}

func TestPrinter_Warn(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false, false).Warn("config key %s skipped", "color.ui")
	if !strings.Contains(buf.String(), "Warning: config key color.ui skipped") {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	NewPrinter(&buf, true, false).Warn("dirty tree")
	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse JSON: %v\nOutput: %s", err, buf.String())
	}
	if result["warning"] != "dirty tree" {
		t.Errorf("warning = %v, want %q", result["warning"], "dirty tree")
	}
}

func TestPrinter_StderrSilentInJSON(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, true, false).Stderr("watching %s\n", "/v")
	if buf.Len() != 0 {
		t.Errorf("Stderr() in JSON mode wrote %q", buf.String())
	}
}

func TestPrinter_Changes(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	printer.Changes([]git.ChangeEntry{
		{Index: git.Modified, Tree: git.Unchanged, Source: "a.txt"},
		{Index: git.Renamed, Tree: git.Unchanged, Source: "new.txt", Destination: "old.txt"},
		{Index: git.Unknown, Tree: git.Unknown, Source: "dir/new.bin"},
	})

	want := "M  a.txt\nR  old.txt -> new.txt\n?? dir/new.bin\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestPrinter_ChangesEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false, false).Changes(nil)
	if got := buf.String(); got != "clean\n" {
		t.Errorf("output = %q, want %q", got, "clean\n")
	}
}

func TestPrinter_Table(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	printer.Table([]string{"TAG", "N"}, [][]string{
		{"2026-01-15T15-04-05Z", "3"},
		{"x", "12", "ignored"},
	})

	want := "TAG                   N \n" +
		"2026-01-15T15-04-05Z  3 \n" +
		"x                     12\n"
	if got := buf.String(); got != want {
		t.Errorf("output =\n%q\nwant\n%q", got, want)
	}
}

func TestPrinter_Check(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	printer.Check("pass", "git", "git version 2.45")
	printer.Check("warn", "identity", "using default")
	printer.Check("fail", "marker", "no .git")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	for i, prefix := range []string{"ok   git", "warn identity", "FAIL marker"} {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], prefix)
		}
	}
}

func TestPrinter_KeyValueAndSection(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	printer.Section("Vault")
	printer.KeyValue("Path", "/srv/vault")

	want := "\nVault\n─────\nPath: /srv/vault\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestErrorJSON_Format(t *testing.T) {
	var parsed struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}
	if err := json.Unmarshal(ErrorJSON("boom", ExitSystemError), &parsed); err != nil {
		t.Fatalf("Failed to parse ErrorJSON output: %v", err)
	}
	if parsed.Error != "boom" || parsed.Code != ExitSystemError {
		t.Errorf("parsed = %+v", parsed)
	}
}
