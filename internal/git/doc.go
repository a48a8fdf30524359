// Package git provides a repository handle that drives the git CLI.
//
// The package shells out to the git executable through internal/runner,
// capturing stdout and stderr of each invocation. A Repo is bound to one
// root directory and keeps the output of the last command it ran until
// the next one overwrites it.
//
// # Repository Operations
//
// Each operation is a thin argument builder returning the exit code:
//
//	repo := git.Open("/srv/vault")
//	code, err := repo.Init(ctx)              // err only when git cannot be spawned
//	code, err = repo.SetConfig(ctx, "user.name", "backup")
//	code, err = repo.Commit(ctx, "nightly", "--allow-empty")
//	code, err = repo.Status(ctx, "docs")     // status --porcelain -z -- docs
//
// A nonzero exit is not an error at this level. Use LastErr to turn it
// into a *runner.CommandError carrying stderr.
//
// # Status Parsing
//
// ParseStatus turns NUL-delimited porcelain output into ChangeEntry
// records. Renames and copies occupy two consecutive fields and are
// consumed as a pair. Fields are named by position; git writes the new
// path first, so Path and OrigPath give the human reading:
//
//	entries, err := git.ParseStatus([]byte("R  new.txt\x00old.txt\x00"))
//	// entries[0].Source == "new.txt", entries[0].Destination == "old.txt"
//	// entries[0].OrigPath() + " -> " + entries[0].Path() == "old.txt -> new.txt"
//
// Failures wrap ErrMalformedStatusRecord or ErrTruncatedRenameEntry in a
// *ParseError; no partial result is returned.
//
// # Concurrency
//
// Repo is not safe for concurrent use. Locked serializes callers that
// share one handle.
package git
