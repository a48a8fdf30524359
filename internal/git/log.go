package git

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Commit is the metadata of one commit.
type Commit struct {
	SHA     string
	Subject string
	Author  string
	Date    time.Time
}

// Diffstat counts the changes between two trees.
type Diffstat struct {
	Files      int
	Insertions int
	Deletions  int
}

// EmptyTree is the object name of git's empty tree. Diffing from it
// reports every file in the target as added.
const EmptyTree = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// fieldSeparator splits the fields of a --format line. Unit separator
// cannot appear in a subject or author name.
const fieldSeparator = "\x1f"

var commitFormat = strings.Join([]string{"%H", "%s", "%an", "%ct"}, fieldSeparator)

// ShowCommit reads the metadata of the commit rev resolves to.
func (r *Repo) ShowCommit(ctx context.Context, rev string) (Commit, error) {
	if err := r.check(ctx, "log", "-1", "--format="+commitFormat, rev, "--"); err != nil {
		return Commit{}, err
	}
	return parseCommit(strings.TrimRight(string(r.Stdout()), "\n"))
}

func parseCommit(line string) (Commit, error) {
	fields := strings.Split(line, fieldSeparator)
	if len(fields) != 4 {
		return Commit{}, fmt.Errorf("unexpected log line %q", line)
	}
	var date time.Time
	if ts, err := strconv.ParseInt(fields[3], 10, 64); err == nil {
		date = time.Unix(ts, 0).UTC()
	}
	return Commit{
		SHA:     fields[0],
		Subject: fields[1],
		Author:  fields[2],
		Date:    date,
	}, nil
}

// Diffstat compares the trees of from and to. An empty or unresolvable
// from is treated as the empty tree.
func (r *Repo) Diffstat(ctx context.Context, from, to string) (Diffstat, error) {
	from = r.resolveOrEmptyTree(ctx, from)
	if err := r.check(ctx, "diff", "--shortstat", from, to, "--"); err != nil {
		return Diffstat{}, err
	}
	return parseShortstat(string(r.Stdout())), nil
}

func (r *Repo) resolveOrEmptyTree(ctx context.Context, rev string) string {
	if rev == "" {
		return EmptyTree
	}
	if _, err := r.RevParse(ctx, rev); err != nil {
		return EmptyTree
	}
	return rev
}

// shortstatRegex matches " 3 files changed, 45 insertions(+), 12 deletions(-)".
// Either count may be missing when it is zero.
var shortstatRegex = regexp.MustCompile(`(\d+) files? changed(?:, (\d+) insertions?\(\+\))?(?:, (\d+) deletions?\(-\))?`)

func parseShortstat(out string) Diffstat {
	m := shortstatRegex.FindStringSubmatch(out)
	if m == nil {
		return Diffstat{}
	}
	return Diffstat{
		Files:      atoi(m[1]),
		Insertions: atoi(m[2]),
		Deletions:  atoi(m[3]),
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
