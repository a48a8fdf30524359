// Package doctor runs health checks against a vault.
package doctor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gorewood/vault/internal/git"
	"github.com/gorewood/vault/internal/runner"
	"github.com/gorewood/vault/internal/vault"
)

// Status is the outcome of one check.
type Status string

// Check outcomes.
const (
	Pass Status = "pass"
	Warn Status = "warn"
	Fail Status = "fail"
)

// Check holds the result of a single health check.
type Check struct {
	Name    string `json:"name"           jsonschema:"check name"`
	Status  Status `json:"status"         jsonschema:"pass, warn or fail"`
	Message string `json:"message"        jsonschema:"what was found"`
	Hint    string `json:"hint,omitempty" jsonschema:"how to fix it"`
}

// Summary counts check outcomes.
type Summary struct {
	Passed   int `json:"passed"   jsonschema:"number of passing checks"`
	Warnings int `json:"warnings" jsonschema:"number of warnings"`
	Failed   int `json:"failed"   jsonschema:"number of failures"`
}

// Report is the full doctor run.
type Report struct {
	Vault   string  `json:"vault"   jsonschema:"vault path checked"`
	Checks  []Check `json:"checks"  jsonschema:"individual checks in run order"`
	Summary Summary `json:"summary" jsonschema:"outcome counts"`
}

// Healthy reports whether no check failed.
func (r Report) Healthy() bool {
	return r.Summary.Failed == 0
}

// Options selects what Run inspects.
type Options struct {
	Path string
	// GitBinary defaults to git.DefaultBinary.
	GitBinary string
	// ConfigSource is the config file in use, empty for defaults.
	ConfigSource string
}

// Run executes every check in order. Checks that need a working
// repository are skipped once an earlier prerequisite fails.
func Run(ctx context.Context, opts Options) Report {
	if opts.GitBinary == "" {
		opts.GitBinary = git.DefaultBinary
	}
	report := Report{Vault: opts.Path}
	add := func(c Check) bool {
		report.Checks = append(report.Checks, c)
		switch c.Status {
		case Pass:
			report.Summary.Passed++
		case Warn:
			report.Summary.Warnings++
		case Fail:
			report.Summary.Failed++
		}
		return c.Status != Fail
	}

	add(checkConfig(opts.ConfigSource))
	gitOK := add(checkGitBinary(ctx, opts.GitBinary))
	if !add(checkDirectory(opts.Path)) || !add(checkMarker(opts.Path)) || !gitOK {
		return report
	}

	repo := git.Open(opts.Path, git.WithBinary(opts.GitBinary))
	if !add(checkStatus(ctx, repo)) {
		return report
	}
	add(checkIdentity(ctx, repo))
	add(checkUntrackedMode(ctx, repo))
	return report
}

func checkConfig(source string) Check {
	if source == "" {
		return Check{Name: "Config", Status: Pass, Message: "using built-in defaults"}
	}
	return Check{Name: "Config", Status: Pass, Message: source}
}

func checkGitBinary(ctx context.Context, binary string) Check {
	res, err := runner.New(binary, "").Check(ctx, "--version")
	if err != nil {
		return Check{
			Name:    "Git binary",
			Status:  Fail,
			Message: err.Error(),
			Hint:    "Install git and make sure it is on PATH",
		}
	}
	return Check{Name: "Git binary", Status: Pass, Message: strings.TrimSpace(string(res.Stdout))}
}

func checkDirectory(path string) Check {
	info, err := os.Stat(path)
	switch {
	case err != nil:
		return Check{
			Name:    "Vault directory",
			Status:  Fail,
			Message: err.Error(),
			Hint:    "Run 'vault init' to create it",
		}
	case !info.IsDir():
		return Check{Name: "Vault directory", Status: Fail, Message: path + " is not a directory"}
	}
	return Check{Name: "Vault directory", Status: Pass, Message: path}
}

func checkMarker(path string) Check {
	if !git.HasMarker(path) {
		return Check{
			Name:    "Repository",
			Status:  Fail,
			Message: "no " + git.MarkerDir + " directory",
			Hint:    "Run 'vault init' to turn the directory into a vault",
		}
	}
	return Check{Name: "Repository", Status: Pass, Message: git.MarkerDir + " present"}
}

func checkStatus(ctx context.Context, repo *git.Repo) Check {
	changes, err := repo.Changes(ctx, "")
	if err != nil {
		return Check{Name: "Status", Status: Fail, Message: err.Error()}
	}
	if len(changes) == 0 {
		return Check{Name: "Status", Status: Pass, Message: "clean"}
	}
	return Check{Name: "Status", Status: Pass, Message: fmt.Sprintf("%d pending change(s)", len(changes))}
}

func checkIdentity(ctx context.Context, repo *git.Repo) Check {
	var missing []string
	for _, key := range []string{"user.name", "user.email"} {
		value, err := repo.ConfigGet(ctx, key)
		if err != nil {
			return Check{Name: "Identity", Status: Warn, Message: err.Error()}
		}
		if value == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Check{
			Name:    "Identity",
			Status:  Warn,
			Message: strings.Join(missing, ", ") + " not set; snapshots will use git's global identity",
			Hint:    "Set identity in the config file and re-run 'vault init' on a new vault",
		}
	}
	return Check{Name: "Identity", Status: Pass, Message: "set"}
}

func checkUntrackedMode(ctx context.Context, repo *git.Repo) Check {
	value, err := repo.ConfigGet(ctx, vault.UntrackedFilesKey)
	if err != nil {
		return Check{Name: "Untracked files", Status: Warn, Message: err.Error()}
	}
	if value != "all" {
		if value == "" {
			value = "unset"
		}
		return Check{
			Name:    "Untracked files",
			Status:  Warn,
			Message: vault.UntrackedFilesKey + " is " + value + "; new directories show up as one entry",
			Hint:    "git -C " + repo.Root() + " config " + vault.UntrackedFilesKey + " all",
		}
	}
	return Check{Name: "Untracked files", Status: Pass, Message: "all"}
}
