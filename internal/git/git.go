// Package git provides a repository handle that drives the git CLI.
package git

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gorewood/vault/internal/runner"
)

// MarkerDir is the directory whose presence marks an existing repository.
const MarkerDir = ".git"

// DefaultBinary is the executable used when no WithBinary option is given.
const DefaultBinary = "git"

// Repo is bound to one repository root and remembers the output of the
// most recent command it ran. A Repo is not safe for concurrent use;
// share one through Locked instead.
type Repo struct {
	root string
	run  *runner.Runner
	last runner.Result
}

// Option configures a Repo.
type Option func(*Repo)

// WithBinary overrides the git executable. Tests use it to substitute a fake.
func WithBinary(name string) Option {
	return func(r *Repo) {
		r.run.Name = name
	}
}

// Open binds a Repo to root. It does not touch the filesystem.
func Open(root string, opts ...Option) *Repo {
	r := &Repo{
		root: root,
		run:  runner.New(DefaultBinary, root),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Root returns the repository root path.
func (r *Repo) Root() string {
	return r.root
}

// Binary returns the git executable this Repo runs.
func (r *Repo) Binary() string {
	return r.run.Name
}

// HasMarker reports whether root already contains a repository marker.
func HasMarker(root string) bool {
	info, err := os.Stat(filepath.Join(root, MarkerDir))
	return err == nil && info.IsDir()
}

// Command runs an arbitrary git subcommand and records its output.
// The returned error is non-nil only when git could not be spawned;
// a failing subcommand is reported through the exit code.
func (r *Repo) Command(ctx context.Context, name string, args ...string) (int, error) {
	res, err := r.run.Execute(ctx, append([]string{name}, args...)...)
	r.last = res
	if err != nil {
		return -1, err
	}
	return res.ExitCode, nil
}

// Init runs git init in the root.
func (r *Repo) Init(ctx context.Context) (int, error) {
	return r.Command(ctx, "init")
}

// SetConfig writes one repository-local config value.
func (r *Repo) SetConfig(ctx context.Context, key, value string) (int, error) {
	return r.Command(ctx, "config", key, value)
}

// Commit records a commit with the given message.
func (r *Repo) Commit(ctx context.Context, message string, extra ...string) (int, error) {
	args := append([]string{"-m", message}, extra...)
	return r.Command(ctx, "commit", args...)
}

// Status runs git status in porcelain, NUL-delimited mode.
// A non-empty pathFilter is passed after "--".
func (r *Repo) Status(ctx context.Context, pathFilter string, extra ...string) (int, error) {
	args := append([]string{"--porcelain", "-z"}, extra...)
	if pathFilter != "" {
		args = append(args, "--", pathFilter)
	}
	return r.Command(ctx, "status", args...)
}

// Add stages path.
func (r *Repo) Add(ctx context.Context, path string, extra ...string) (int, error) {
	args := append(append([]string{}, extra...), "--", path)
	return r.Command(ctx, "add", args...)
}

// Tag runs git tag with args.
func (r *Repo) Tag(ctx context.Context, args ...string) (int, error) {
	return r.Command(ctx, "tag", args...)
}

// Restore overwrites the index and working tree at pathspec with the
// tree of source. Files tracked now but absent from source are removed;
// HEAD does not move.
func (r *Repo) Restore(ctx context.Context, source, pathspec string) (int, error) {
	return r.Command(ctx, "restore", "--source="+source, "--staged", "--worktree", "--", pathspec)
}

// Stdout returns the captured stdout of the last command.
func (r *Repo) Stdout() []byte {
	return r.last.Stdout
}

// Stderr returns the captured stderr of the last command.
func (r *Repo) Stderr() []byte {
	return r.last.Stderr
}

// ExitCode returns the exit status of the last command.
func (r *Repo) ExitCode() int {
	return r.last.ExitCode
}

// LastErr returns a *runner.CommandError for a failed last command, or nil.
func (r *Repo) LastErr() error {
	return r.last.Err()
}

// check runs a subcommand and folds a nonzero exit into an error.
func (r *Repo) check(ctx context.Context, name string, args ...string) error {
	if _, err := r.Command(ctx, name, args...); err != nil {
		return err
	}
	return r.LastErr()
}

// Changes runs status and parses the working-tree change set.
func (r *Repo) Changes(ctx context.Context, pathFilter string) ([]ChangeEntry, error) {
	if _, err := r.Status(ctx, pathFilter); err != nil {
		return nil, err
	}
	if err := r.LastErr(); err != nil {
		return nil, err
	}
	return ParseStatus(r.Stdout())
}

// ConfigGet reads one config value. A missing key yields "" and no error.
func (r *Repo) ConfigGet(ctx context.Context, key string) (string, error) {
	code, err := r.Command(ctx, "config", "--get", key)
	if err != nil {
		return "", err
	}
	// git config --get exits 1 when the key is unset.
	if code == 1 {
		return "", nil
	}
	if err := r.LastErr(); err != nil {
		return "", err
	}
	return strings.TrimSpace(string(r.Stdout())), nil
}

// RevParse resolves rev to a full object name.
func (r *Repo) RevParse(ctx context.Context, rev string) (string, error) {
	if err := r.check(ctx, "rev-parse", "--verify", "--quiet", rev); err != nil {
		return "", err
	}
	return strings.TrimSpace(string(r.Stdout())), nil
}

// Tags lists all tag names, sorted.
func (r *Repo) Tags(ctx context.Context) ([]string, error) {
	if err := r.check(ctx, "tag", "--list"); err != nil {
		return nil, err
	}
	var tags []string
	for line := range strings.SplitSeq(string(r.Stdout()), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			tags = append(tags, line)
		}
	}
	sort.Strings(tags)
	return tags, nil
}
