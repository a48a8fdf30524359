package vault

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gorewood/vault/internal/git"
	"github.com/gorewood/vault/internal/log"
)

// LatestTag always points at the most recent snapshot.
const LatestTag = "latest"

// TagName formats t as a tag-safe UTC timestamp (RFC 3339 with the
// colons replaced by dashes).
func TagName(t time.Time) string {
	return strings.ReplaceAll(t.UTC().Format(time.RFC3339), ":", "-")
}

// SnapshotOptions controls Snapshot.
type SnapshotOptions struct {
	Message string
	Now     func() time.Time
}

// SnapshotResult describes one Snapshot call.
type SnapshotResult struct {
	Created bool
	Tag     string
	Commit  string
	Changes []git.ChangeEntry
}

// Snapshot commits every pending change in the vault and tags the commit
// with a timestamp. The latest tag is moved to it. A clean vault yields
// Created == false and no commit. Status is read again after staging and
// after committing; anything left over fails the snapshot.
func Snapshot(ctx context.Context, repo *git.Repo, opts SnapshotOptions) (*SnapshotResult, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	root := repo.Root()

	changes, err := repo.Changes(ctx, "")
	if err != nil {
		return nil, newError("status", root, ErrSnapshotFailed, err)
	}
	if len(changes) == 0 {
		log.FromContext(ctx).Info("nothing to snapshot", "path", root)
		return &SnapshotResult{Changes: changes}, nil
	}

	existing, err := repo.Tags(ctx)
	if err != nil {
		return nil, newError("tag", root, ErrSnapshotFailed, err)
	}
	tag := uniqueTag(TagName(opts.Now()), existing)

	message := opts.Message
	if message == "" {
		message = "snapshot " + tag
	}

	steps := []struct {
		op  string
		run func() error
	}{
		{"add", func() error {
			return runStep(repo, "add", ErrSnapshotFailed, func() (int, error) { return repo.Add(ctx, ".", "-A") })
		}},
		{"add", func() error {
			return verifyStatus(ctx, repo, "add", errDirtyTree, func(e git.ChangeEntry) bool { return !e.IsTreeClean() })
		}},
		{"commit", func() error {
			return runStep(repo, "commit", ErrSnapshotFailed, func() (int, error) { return repo.Commit(ctx, message) })
		}},
		{"commit", func() error {
			return verifyStatus(ctx, repo, "commit", errNotCommitted, func(e git.ChangeEntry) bool { return !e.IsClean() })
		}},
		{"tag", func() error {
			return runStep(repo, "tag", ErrSnapshotFailed, func() (int, error) { return repo.Tag(ctx, tag) })
		}},
		{"tag", func() error {
			return runStep(repo, "tag", ErrSnapshotFailed, func() (int, error) { return repo.Tag(ctx, "-f", LatestTag) })
		}},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return nil, err
		}
	}

	head, err := repo.RevParse(ctx, "HEAD")
	if err != nil {
		return nil, newError("rev-parse", root, ErrSnapshotFailed, err)
	}

	log.FromContext(ctx).Info("snapshot recorded", "path", root, "tag", tag, "changes", len(changes))
	return &SnapshotResult{Created: true, Tag: tag, Commit: head, Changes: changes}, nil
}

var (
	errDirtyTree    = errors.New("dirty tree after add")
	errNotCommitted = errors.New("not fully committed")
)

// runStep runs one git operation and turns a spawn failure or a nonzero
// exit into a *Error of the given kind carrying git's stderr.
func runStep(repo *git.Repo, op string, kind error, run func() (int, error)) error {
	if _, err := run(); err != nil {
		return newError(op, repo.Root(), kind, err)
	}
	if err := repo.LastErr(); err != nil {
		e := newError(op, repo.Root(), kind, err)
		e.Stderr = strings.TrimSpace(string(repo.Stderr()))
		return e
	}
	return nil
}

// verifyStatus fails with reason when any entry still counts as pending.
func verifyStatus(ctx context.Context, repo *git.Repo, op string, reason error, pending func(git.ChangeEntry) bool) error {
	entries, err := repo.Changes(ctx, "")
	if err != nil {
		return newError(op, repo.Root(), ErrSnapshotFailed, err)
	}
	for _, e := range entries {
		if pending(e) {
			return newError(op, repo.Root(), ErrSnapshotFailed, fmt.Errorf("%w: %s", reason, e))
		}
	}
	return nil
}

// uniqueTag appends .1, .2, ... to base until it no longer collides.
func uniqueTag(base string, existing []string) string {
	if !slices.Contains(existing, base) {
		return base
	}
	for n := 1; ; n++ {
		candidate := base + "." + strconv.Itoa(n)
		if !slices.Contains(existing, candidate) {
			return candidate
		}
	}
}

// snapshotTagPattern matches TagName output with an optional .N suffix.
var snapshotTagPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}Z)(?:\.(\d+))?$`)

// parseSnapshotTag splits a snapshot tag into its timestamp and suffix.
// A tag without a suffix has seq 0.
func parseSnapshotTag(tag string) (stamp string, seq int, ok bool) {
	m := snapshotTagPattern.FindStringSubmatch(tag)
	if m == nil {
		return "", 0, false
	}
	if m[2] != "" {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return "", 0, false
		}
		seq = n
	}
	return m[1], seq, true
}

// IsSnapshotTag reports whether tag has the shape Snapshot gives its tags.
func IsSnapshotTag(tag string) bool {
	_, _, ok := parseSnapshotTag(tag)
	return ok
}

// ListSnapshots returns snapshot tag names oldest first. Tags that do not
// have the snapshot shape, anchor and latest among them, are left out.
// Same-second tags order by their numeric suffix.
func ListSnapshots(ctx context.Context, repo *git.Repo) ([]string, error) {
	tags, err := repo.Tags(ctx)
	if err != nil {
		return nil, newError("tag", repo.Root(), ErrSnapshotFailed, err)
	}
	type parsed struct {
		tag   string
		stamp string
		seq   int
	}
	found := make([]parsed, 0, len(tags))
	for _, t := range tags {
		if stamp, seq, ok := parseSnapshotTag(t); ok {
			found = append(found, parsed{t, stamp, seq})
		}
	}
	// The timestamp is fixed-width UTC, so string order is time order.
	slices.SortFunc(found, func(a, b parsed) int {
		if c := strings.Compare(a.stamp, b.stamp); c != 0 {
			return c
		}
		return a.seq - b.seq
	})
	snapshots := make([]string, 0, len(found))
	for _, p := range found {
		snapshots = append(snapshots, p.tag)
	}
	return snapshots, nil
}

// RestoreOptions controls Restore.
type RestoreOptions struct {
	// Force discards pending changes, untracked files included, instead
	// of refusing to restore over them.
	Force bool
}

// RestoreResult describes one Restore call.
type RestoreResult struct {
	Tag    string
	Commit string
	// Changes is the status after the restore: the difference between
	// the restored files and HEAD.
	Changes []git.ChangeEntry
}

// Restore replaces the vault's files with the tree of a snapshot. tag may
// be a snapshot tag, latest or anchor. HEAD and the tags stay where they
// are, so the restored state shows up as pending changes and the next
// Snapshot records it. A vault with pending changes is refused with
// ErrDirtyVault unless opts.Force is set.
func Restore(ctx context.Context, repo *git.Repo, tag string, opts RestoreOptions) (*RestoreResult, error) {
	root := repo.Root()
	if tag != LatestTag && tag != AnchorTag && !IsSnapshotTag(tag) {
		return nil, newError("restore", root, ErrUnknownSnapshot, fmt.Errorf("%q is not a snapshot tag", tag))
	}
	commit, err := repo.RevParse(ctx, "refs/tags/"+tag+"^{commit}")
	if err != nil {
		return nil, newError("rev-parse", root, ErrUnknownSnapshot, fmt.Errorf("no tag %q", tag))
	}

	pending, err := repo.Changes(ctx, "")
	if err != nil {
		return nil, newError("status", root, ErrRestoreFailed, err)
	}
	if len(pending) > 0 {
		if !opts.Force {
			return nil, newError("restore", root, ErrDirtyVault,
				fmt.Errorf("%d pending change(s); snapshot them first or force the restore", len(pending)))
		}
		err := runStep(repo, "clean", ErrRestoreFailed, func() (int, error) {
			return repo.Command(ctx, "clean", "-fd")
		})
		if err != nil {
			return nil, err
		}
	}

	err = runStep(repo, "restore", ErrRestoreFailed, func() (int, error) {
		return repo.Restore(ctx, tag, ".")
	})
	if err != nil {
		return nil, err
	}

	changes, err := repo.Changes(ctx, "")
	if err != nil {
		return nil, newError("status", root, ErrRestoreFailed, err)
	}
	log.FromContext(ctx).Info("snapshot restored", "path", root, "tag", tag, "changes", len(changes))
	return &RestoreResult{Tag: tag, Commit: commit, Changes: changes}, nil
}

// SnapshotInfo describes one recorded snapshot.
type SnapshotInfo struct {
	Tag    string
	Commit git.Commit
	// Stat compares the snapshot with the one before it, or with the
	// anchor for the first snapshot.
	Stat git.Diffstat
}

// History returns every snapshot with its commit and diffstat, oldest first.
func History(ctx context.Context, repo *git.Repo) ([]SnapshotInfo, error) {
	tags, err := ListSnapshots(ctx, repo)
	if err != nil {
		return nil, err
	}
	history := make([]SnapshotInfo, 0, len(tags))
	prev := AnchorTag
	for _, tag := range tags {
		rev := tag + "^{commit}"
		commit, err := repo.ShowCommit(ctx, rev)
		if err != nil {
			return nil, newError("log", repo.Root(), ErrSnapshotFailed, err)
		}
		stat, err := repo.Diffstat(ctx, prev, rev)
		if err != nil {
			return nil, newError("diff", repo.Root(), ErrSnapshotFailed, err)
		}
		history = append(history, SnapshotInfo{Tag: tag, Commit: commit, Stat: stat})
		prev = rev
	}
	return history, nil
}
