package git

import (
	"context"
	"testing"
	"time"
)

func commitAll(t *testing.T, repo *Repo, message string) {
	t.Helper()
	ctx := context.Background()
	code, err := repo.Add(ctx, ".", "-A")
	mustSucceed(t, repo, "add", code, err)
	code, err = repo.Commit(ctx, message)
	mustSucceed(t, repo, "commit", code, err)
}

func TestRepo_ShowCommit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	writeFile(t, repo.Root(), "a.txt", "a\n")
	before := time.Now().Add(-time.Minute)
	commitAll(t, repo, "first snapshot")

	head, err := repo.RevParse(ctx, "HEAD")
	if err != nil {
		t.Fatal(err)
	}

	c, err := repo.ShowCommit(ctx, "HEAD")
	if err != nil {
		t.Fatalf("ShowCommit() error = %v", err)
	}
	if c.SHA != head {
		t.Errorf("SHA = %s, want %s", c.SHA, head)
	}
	if c.Subject != "first snapshot" {
		t.Errorf("Subject = %q", c.Subject)
	}
	if c.Author != "Test User" {
		t.Errorf("Author = %q", c.Author)
	}
	if !c.Date.After(before) {
		t.Errorf("Date = %v, want after %v", c.Date, before)
	}

	if _, err = repo.ShowCommit(ctx, "no-such-rev"); err == nil {
		t.Error("ShowCommit(no-such-rev) succeeded")
	}
}

func TestRepo_Diffstat(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	writeFile(t, repo.Root(), "a.txt", "one\ntwo\n")
	writeFile(t, repo.Root(), "b.txt", "b\n")
	commitAll(t, repo, "first")
	first, err := repo.RevParse(ctx, "HEAD")
	if err != nil {
		t.Fatal(err)
	}

	writeFile(t, repo.Root(), "a.txt", "one\nthree\nfour\n")
	commitAll(t, repo, "second")

	tests := []struct {
		name     string
		from, to string
		want     Diffstat
	}{
		{"between commits", first, "HEAD", Diffstat{Files: 1, Insertions: 2, Deletions: 1}},
		{"empty from diffs against the empty tree", "", first, Diffstat{Files: 2, Insertions: 3}},
		{"missing from diffs against the empty tree", "missing-tag", first, Diffstat{Files: 2, Insertions: 3}},
		{"same revision", "HEAD", "HEAD", Diffstat{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Diffstat(ctx, tt.from, tt.to)
			if err != nil {
				t.Fatalf("Diffstat() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Diffstat(%q, %q) = %+v, want %+v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestParseShortstat(t *testing.T) {
	tests := []struct {
		in   string
		want Diffstat
	}{
		{" 3 files changed, 45 insertions(+), 12 deletions(-)\n", Diffstat{3, 45, 12}},
		{" 1 file changed, 1 insertion(+)\n", Diffstat{1, 1, 0}},
		{" 2 files changed, 7 deletions(-)\n", Diffstat{2, 0, 7}},
		{"", Diffstat{}},
	}
	for _, tt := range tests {
		if got := parseShortstat(tt.in); got != tt.want {
			t.Errorf("parseShortstat(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseCommit(t *testing.T) {
	c, err := parseCommit("abc\x1fsubject with | pipes\x1fA U Thor\x1f1768489505")
	if err != nil {
		t.Fatalf("parseCommit() error = %v", err)
	}
	if c.SHA != "abc" || c.Subject != "subject with | pipes" {
		t.Errorf("parseCommit() = %+v", c)
	}
	if want := time.Unix(1768489505, 0).UTC(); !c.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", c.Date, want)
	}

	if _, err = parseCommit("too\x1ffew"); err == nil {
		t.Error("parseCommit(too few fields) succeeded")
	}
}
