// Package vault bootstraps and snapshots git-backed storage directories.
//
// A vault is a plain directory under version control. Initialize brings a
// path under control idempotently:
//
//	repo, err := vault.Initialize(ctx, "/srv/vault", vault.Options{
//	    Identity: vault.Identity{Name: "backup", Email: "backup@host"},
//	    Policy:   vault.PolicyStrict,
//	    Anchor:   true,
//	})
//
// The call walks StateNotCreated, StateDirCreated, StateRepoReady and
// StateConfigured. An existing repository is validated with status and
// left alone. When a fatal step fails, a directory created by the same
// call is removed; a pre-existing directory is never removed.
//
// # Errors
//
// Every failure is a *Error. Its kind is matched with errors.Is against
// ErrDirectoryUnavailable, ErrRepositoryInvalid, ErrRepositoryInitFailed,
// ErrConfigFailed, ErrAnchorFailed, ErrNotAVault or ErrSnapshotFailed.
// The underlying runner error (spawn or command failure) is matched the
// same way.
//
// # Snapshots
//
// Snapshot stages and commits all pending changes, tags the commit with
// a timestamp from TagName and moves the "latest" tag. ListSnapshots
// returns the timestamp tags.
package vault
