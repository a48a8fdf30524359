package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/gorewood/vault/internal/runner"
)

// requireGit skips the test when no git executable is available.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

// mustSucceed fails the test unless a git call spawned and exited zero.
func mustSucceed(t *testing.T, repo *Repo, what string, code int, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", what, err)
	}
	if code != 0 {
		t.Fatalf("%s: exit %d: %s", what, code, repo.Stderr())
	}
}

// newTestRepo initializes a repository with a local identity in a temp dir.
func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	requireGit(t)
	ctx := context.Background()

	repo := Open(t.TempDir())
	code, err := repo.Init(ctx)
	mustSucceed(t, repo, "git init", code, err)

	for key, value := range map[string]string{
		"user.email":                "test@example.com",
		"user.name":                 "Test User",
		"status.showUntrackedFiles": "all",
		"commit.gpgsign":            "false",
	} {
		code, err = repo.SetConfig(ctx, key, value)
		mustSucceed(t, repo, "git config "+key, code, err)
	}
	return repo
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestRepo_InitAndMarker(t *testing.T) {
	repo := newTestRepo(t)
	if !HasMarker(repo.Root()) {
		t.Error("HasMarker(repo) = false, want true")
	}
	if HasMarker(t.TempDir()) {
		t.Error("HasMarker(empty dir) = true, want false")
	}
}

func TestRepo_StatusUntrackedAll(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	writeFile(t, repo.Root(), "top.txt", "a")
	writeFile(t, repo.Root(), "nested/deep/file.txt", "b")

	entries, err := repo.Changes(ctx, "")
	if err != nil {
		t.Fatalf("Changes() error = %v", err)
	}

	var sources []string
	for _, e := range entries {
		if e.Index != Unknown {
			t.Errorf("%s: Index = %v, want untracked", e.Source, e.Index)
		}
		sources = append(sources, e.Source)
	}
	slices.Sort(sources)
	want := []string{"nested/deep/file.txt", "top.txt"}
	if !reflect.DeepEqual(sources, want) {
		t.Errorf("sources = %v, want %v", sources, want)
	}
}

func TestRepo_StatusPathFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	writeFile(t, repo.Root(), "keep/a.txt", "a")
	writeFile(t, repo.Root(), "skip/b.txt", "b")

	entries, err := repo.Changes(ctx, "keep")
	if err != nil {
		t.Fatalf("Changes() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Source != "keep/a.txt" {
		t.Errorf("Changes(keep) = %+v, want only keep/a.txt", entries)
	}
}

func TestRepo_CommitAndRename(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	writeFile(t, repo.Root(), "old.txt", "some content long enough to be detected as a rename\n")

	code, err := repo.Add(ctx, ".")
	mustSucceed(t, repo, "add", code, err)
	code, err = repo.Commit(ctx, "first")
	mustSucceed(t, repo, "commit", code, err)
	code, err = repo.Command(ctx, "mv", "old.txt", "new.txt")
	mustSucceed(t, repo, "mv", code, err)

	entries, err := repo.Changes(ctx, "")
	if err != nil {
		t.Fatalf("Changes() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Changes() = %+v, want one rename", entries)
	}
	e := entries[0]
	if e.Index != Renamed {
		t.Errorf("Index = %v, want renamed", e.Index)
	}
	// git writes the new path first in -z mode.
	if e.Source != "new.txt" || e.Destination != "old.txt" {
		t.Errorf("Source = %q, Destination = %q, want new.txt and old.txt", e.Source, e.Destination)
	}
	if got := e.OrigPath() + " -> " + e.Path(); got != "old.txt -> new.txt" {
		t.Errorf("rendered rename = %q, want old.txt -> new.txt", got)
	}
}

func TestRepo_Restore(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	writeFile(t, repo.Root(), "a.txt", "first\n")
	code, err := repo.Add(ctx, ".")
	mustSucceed(t, repo, "add", code, err)
	code, err = repo.Commit(ctx, "first")
	mustSucceed(t, repo, "commit", code, err)
	code, err = repo.Tag(ctx, "one")
	mustSucceed(t, repo, "tag", code, err)

	writeFile(t, repo.Root(), "a.txt", "second\n")
	writeFile(t, repo.Root(), "b.txt", "new\n")
	code, err = repo.Add(ctx, ".")
	mustSucceed(t, repo, "add", code, err)
	code, err = repo.Commit(ctx, "second")
	mustSucceed(t, repo, "commit", code, err)
	head, err := repo.RevParse(ctx, "HEAD")
	if err != nil {
		t.Fatal(err)
	}

	code, err = repo.Restore(ctx, "one", ".")
	mustSucceed(t, repo, "restore", code, err)

	got, err := os.ReadFile(filepath.Join(repo.Root(), "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "first\n" {
		t.Errorf("a.txt = %q, want first", got)
	}
	if _, err := os.Stat(filepath.Join(repo.Root(), "b.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("b.txt still present after restore: %v", err)
	}
	after, err := repo.RevParse(ctx, "HEAD")
	if err != nil {
		t.Fatal(err)
	}
	if after != head {
		t.Errorf("HEAD moved from %s to %s", head, after)
	}
}

func TestRepo_LastOutputRetained(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	code, err := repo.Command(ctx, "rev-parse", "--git-dir")
	mustSucceed(t, repo, "rev-parse", code, err)
	if got := strings.TrimSpace(string(repo.Stdout())); got != ".git" {
		t.Errorf("Stdout() = %q, want .git", got)
	}

	code, err = repo.Command(ctx, "not-a-real-subcommand")
	if err != nil {
		t.Fatalf("Command() error = %v", err)
	}
	if code == 0 {
		t.Error("unknown subcommand exited zero")
	}
	if repo.ExitCode() != code {
		t.Errorf("ExitCode() = %d, want %d", repo.ExitCode(), code)
	}
	if len(repo.Stdout()) != 0 {
		t.Errorf("Stdout() = %q, previous stdout must be overwritten", repo.Stdout())
	}
	if len(repo.Stderr()) == 0 {
		t.Error("Stderr() empty after failed command")
	}
	if !errors.Is(repo.LastErr(), runner.ErrCommandFailure) {
		t.Errorf("LastErr() = %v, want ErrCommandFailure", repo.LastErr())
	}
}

func TestRepo_StatusOutsideRepository(t *testing.T) {
	requireGit(t)
	repo := Open(t.TempDir())
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(repo.Root()))

	_, err := repo.Changes(context.Background(), "")
	var ce *runner.CommandError
	if !errors.As(err, &ce) {
		t.Fatalf("Changes() error = %v, want *runner.CommandError", err)
	}
	if ce.Stderr == "" {
		t.Error("CommandError carries no stderr")
	}
}

func TestRepo_SpawnFailure(t *testing.T) {
	repo := Open(t.TempDir(), WithBinary("vault-missing-git-binary"))
	code, err := repo.Init(context.Background())
	if code != -1 {
		t.Errorf("code = %d, want -1", code)
	}
	if !errors.Is(err, runner.ErrSpawnFailure) {
		t.Errorf("err = %v, want ErrSpawnFailure", err)
	}
}

func TestRepo_ConfigGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	got, err := repo.ConfigGet(ctx, "user.name")
	if err != nil || got != "Test User" {
		t.Errorf("ConfigGet(user.name) = %q, %v", got, err)
	}

	got, err = repo.ConfigGet(ctx, "vault.unset-key")
	if err != nil || got != "" {
		t.Errorf("ConfigGet(unset) = %q, %v, want empty", got, err)
	}
}

func TestRepo_TagsAndRevParse(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	writeFile(t, repo.Root(), "a.txt", "a")
	_, _ = repo.Add(ctx, "a.txt")
	code, err := repo.Commit(ctx, "a")
	mustSucceed(t, repo, "commit", code, err)

	for _, name := range []string{"zeta", "alpha"} {
		code, err = repo.Tag(ctx, name)
		mustSucceed(t, repo, "tag "+name, code, err)
	}

	tags, err := repo.Tags(ctx)
	if err != nil {
		t.Fatalf("Tags() error = %v", err)
	}
	if want := []string{"alpha", "zeta"}; !reflect.DeepEqual(tags, want) {
		t.Errorf("Tags() = %v, want %v", tags, want)
	}

	head, err := repo.RevParse(ctx, "HEAD")
	if err != nil {
		t.Fatal(err)
	}
	alpha, err := repo.RevParse(ctx, "alpha^{commit}")
	if err != nil {
		t.Fatal(err)
	}
	if head != alpha {
		t.Errorf("alpha = %s, want HEAD %s", alpha, head)
	}

	if _, err = repo.RevParse(ctx, "no-such-ref"); !errors.Is(err, runner.ErrCommandFailure) {
		t.Errorf("RevParse(no-such-ref) error = %v, want ErrCommandFailure", err)
	}
}

func TestLocked_SerializesAccess(t *testing.T) {
	repo := newTestRepo(t)
	locked := NewLocked(repo)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- locked.Do(func(r *Repo) error {
				if _, err := r.Command(ctx, "rev-parse", "--git-dir"); err != nil {
					return err
				}
				if got := strings.TrimSpace(string(r.Stdout())); got != ".git" {
					return errors.New("stdout interleaved: " + got)
				}
				return nil
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Error(err)
		}
	}
	if locked.Root() != repo.Root() {
		t.Errorf("Root() = %q, want %q", locked.Root(), repo.Root())
	}
}
