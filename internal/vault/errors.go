package vault

import (
	"errors"
	"strings"
)

// Failure kinds. Every error returned by this package is a *Error whose
// Err field is one of these.
var (
	ErrDirectoryUnavailable = errors.New("directory unavailable")
	ErrRepositoryInvalid    = errors.New("invalid repository status")
	ErrRepositoryInitFailed = errors.New("can't init repository")
	ErrConfigFailed         = errors.New("can't configure repository")
	ErrAnchorFailed         = errors.New("can't record anchor commit")
	ErrNotAVault            = errors.New("not a vault")
	ErrSnapshotFailed       = errors.New("can't record snapshot")
	ErrUnknownSnapshot      = errors.New("unknown snapshot")
	ErrDirtyVault           = errors.New("vault has pending changes")
	ErrRestoreFailed        = errors.New("can't restore snapshot")
)

// Error reports a failed vault operation together with git's stderr.
type Error struct {
	Op     string
	Path   string
	Stderr string
	Err    error
	Cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("dir ")
	b.WriteString(e.Path)
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	if e.Stderr != "" && (e.Cause == nil || !strings.Contains(e.Cause.Error(), e.Stderr)) {
		b.WriteString("\nstderr:\n")
		b.WriteString(e.Stderr)
	}
	return b.String()
}

// Unwrap exposes both the failure kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func newError(op, path string, kind, cause error) *Error {
	return &Error{Op: op, Path: path, Err: kind, Cause: cause}
}
