package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/gorewood/vault/internal/git"
	"github.com/gorewood/vault/internal/log"
)

// AnchorFile is written at the vault root by a fresh initialization.
const AnchorFile = ".vault"

// AnchorTag names the tag placed on the anchor commit.
const AnchorTag = "anchor"

// ConfigPolicy decides whether config writes during init may fail.
type ConfigPolicy string

// Config policies.
const (
	PolicyBestEffort ConfigPolicy = "best-effort"
	PolicyStrict     ConfigPolicy = "strict"
)

// ParsePolicy validates a policy name. Empty selects best-effort.
func ParsePolicy(name string) (ConfigPolicy, error) {
	switch ConfigPolicy(strings.ToLower(strings.TrimSpace(name))) {
	case "", PolicyBestEffort:
		return PolicyBestEffort, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown config policy %q (want %q or %q)", name, PolicyBestEffort, PolicyStrict)
	}
}

// Identity is the committer identity written into a new vault.
type Identity struct {
	Name  string `yaml:"name"  toml:"name"`
	Email string `yaml:"email" toml:"email"`
}

// DefaultIdentity is used for fields left empty in Options.
var DefaultIdentity = Identity{Name: "vault", Email: "vault@localhost"}

// UntrackedFilesKey makes status list every untracked file, not just
// top-level directories.
const UntrackedFilesKey = "status.showUntrackedFiles"

// Options controls Initialize.
type Options struct {
	Identity  Identity
	GitConfig map[string]string
	Policy    ConfigPolicy
	// Anchor records a ".vault" anchor commit after a fresh init.
	Anchor     bool
	GitOptions []git.Option
	Now        func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Identity.Name == "" {
		o.Identity.Name = DefaultIdentity.Name
	}
	if o.Identity.Email == "" {
		o.Identity.Email = DefaultIdentity.Email
	}
	if o.Policy == "" {
		o.Policy = PolicyBestEffort
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// configPairs returns the ordered config writes for a fresh repository:
// identity first, then the untracked-files mode, then extra keys sorted.
func (o Options) configPairs() [][2]string {
	pairs := [][2]string{
		{"user.email", o.Identity.Email},
		{"user.name", o.Identity.Name},
	}
	untracked := "all"
	if v, ok := o.GitConfig[UntrackedFilesKey]; ok {
		untracked = v
	}
	pairs = append(pairs, [2]string{UntrackedFilesKey, untracked})

	keys := make([]string, 0, len(o.GitConfig))
	for k := range o.GitConfig {
		switch k {
		case UntrackedFilesKey, "user.email", "user.name":
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pairs = append(pairs, [2]string{k, o.GitConfig[k]})
	}
	return pairs
}

// State tracks how far an initialization got.
type State int

// Initialization states, in order.
const (
	StateNotCreated State = iota
	StateDirCreated
	StateRepoReady
	StateConfigured
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNotCreated:
		return "not-created"
	case StateDirCreated:
		return "dir-created"
	case StateRepoReady:
		return "repo-ready"
	case StateConfigured:
		return "configured"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// initializer carries one Initialize call.
type initializer struct {
	path    string
	opts    Options
	repo    *git.Repo
	logger  *charmlog.Logger
	state   State
	created bool
	fresh   bool
}

// Initialize makes path a vault and returns a handle bound to it.
//
// It is idempotent: an existing repository is only checked with status
// and never mutated. If a fatal step fails and this call created the
// directory, the directory tree is removed before the error is returned;
// a directory that already existed is left as it was.
func Initialize(ctx context.Context, path string, opts Options) (_ *git.Repo, err error) {
	in := &initializer{
		path:   path,
		opts:   opts.withDefaults(),
		logger: log.FromContext(ctx),
	}
	defer func() {
		if err != nil {
			in.rollback()
		}
	}()

	if err := in.ensureDir(); err != nil {
		return nil, err
	}
	in.repo = git.Open(in.path, in.opts.GitOptions...)

	if err := in.ensureRepo(ctx); err != nil {
		return nil, err
	}
	if in.fresh {
		if err := in.configure(ctx); err != nil {
			return nil, err
		}
		if in.opts.Anchor {
			if err := in.anchor(ctx); err != nil {
				return nil, err
			}
		}
	}

	in.advance(StateConfigured)
	return in.repo, nil
}

func (in *initializer) advance(s State) {
	in.state = s
	in.logger.Debug("vault init", "path", in.path, "state", s)
}

func (in *initializer) ensureDir() error {
	abs, err := filepath.Abs(in.path)
	if err != nil {
		return newError("mkdir", in.path, ErrDirectoryUnavailable, err)
	}
	in.path = abs

	info, err := os.Stat(abs)
	switch {
	case err == nil && info.IsDir():
		in.advance(StateDirCreated)
		return nil
	case err == nil:
		return newError("mkdir", abs, ErrDirectoryUnavailable, errors.New("exists and is not a directory"))
	case !errors.Is(err, fs.ErrNotExist):
		return newError("mkdir", abs, ErrDirectoryUnavailable, err)
	}

	parent := filepath.Dir(abs)
	if pinfo, perr := os.Stat(parent); perr != nil || !pinfo.IsDir() {
		return newError("mkdir", abs, ErrDirectoryUnavailable, fmt.Errorf("parent dir %s is inaccessible", parent))
	}
	if err := os.Mkdir(abs, 0o755); err != nil {
		return newError("mkdir", abs, ErrDirectoryUnavailable, err)
	}

	in.created = true
	in.advance(StateDirCreated)
	return nil
}

func (in *initializer) ensureRepo(ctx context.Context) error {
	if git.HasMarker(in.path) {
		code, err := in.repo.Status(ctx, "")
		if err != nil {
			return newError("status", in.path, ErrRepositoryInvalid, err)
		}
		if code != 0 {
			return in.commandError("status", ErrRepositoryInvalid)
		}
		in.advance(StateRepoReady)
		return nil
	}

	code, err := in.repo.Init(ctx)
	if err != nil {
		return newError("init", in.path, ErrRepositoryInitFailed, err)
	}
	if code != 0 {
		return in.commandError("init", ErrRepositoryInitFailed)
	}
	in.fresh = true
	in.advance(StateRepoReady)
	return nil
}

func (in *initializer) configure(ctx context.Context) error {
	for _, kv := range in.opts.configPairs() {
		code, err := in.repo.SetConfig(ctx, kv[0], kv[1])
		if err == nil && code == 0 {
			continue
		}
		if in.opts.Policy == PolicyStrict {
			if err != nil {
				return newError("config", in.path, ErrConfigFailed, err)
			}
			return in.commandError("config "+kv[0], ErrConfigFailed)
		}
		in.logger.Warn("config write failed", "path", in.path, "key", kv[0], "exit", code, "err", err)
	}
	return nil
}

func (in *initializer) anchor(ctx context.Context) error {
	stamp := TagName(in.opts.Now())
	if err := os.WriteFile(filepath.Join(in.path, AnchorFile), []byte(stamp+"\n"), 0o600); err != nil {
		return newError("anchor", in.path, ErrAnchorFailed, err)
	}

	steps := []struct {
		op  string
		run func() (int, error)
	}{
		{"add", func() (int, error) { return in.repo.Add(ctx, AnchorFile) }},
		{"commit", func() (int, error) { return in.repo.Commit(ctx, AnchorTag) }},
		{"tag", func() (int, error) { return in.repo.Tag(ctx, AnchorTag) }},
	}
	for _, step := range steps {
		code, err := step.run()
		if err != nil {
			return newError(step.op, in.path, ErrAnchorFailed, err)
		}
		if code != 0 {
			return in.commandError(step.op, ErrAnchorFailed)
		}
	}
	return nil
}

// commandError builds an *Error from the repo's last failed command.
func (in *initializer) commandError(op string, kind error) *Error {
	e := newError(op, in.path, kind, in.repo.LastErr())
	e.Stderr = strings.TrimSpace(string(in.repo.Stderr()))
	return e
}

func (in *initializer) rollback() {
	if !in.created {
		in.logger.Debug("vault init failed, leaving pre-existing dir", "path", in.path, "state", in.state)
		return
	}
	if err := os.RemoveAll(in.path); err != nil {
		in.logger.Error("rollback failed", "path", in.path, "err", err)
		return
	}
	in.logger.Info("rolled back vault dir", "path", in.path, "state", in.state)
	in.state = StateNotCreated
}

// Open binds a handle to an existing vault without modifying it.
func Open(path string, gitOpts ...git.Option) (*git.Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, newError("open", path, ErrDirectoryUnavailable, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, newError("open", abs, ErrDirectoryUnavailable, err)
	}
	if !git.HasMarker(abs) {
		return nil, newError("open", abs, ErrNotAVault, fmt.Errorf("no %s directory", git.MarkerDir))
	}
	return git.Open(abs, gitOpts...), nil
}
