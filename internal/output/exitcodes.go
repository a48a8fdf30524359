// Package output provides structured output and error handling for the vault CLI.
package output

import (
	"errors"

	"github.com/gorewood/vault/internal/git"
	"github.com/gorewood/vault/internal/runner"
	"github.com/gorewood/vault/internal/vault"
)

// Exit codes:
// 0 = Success
// 1 = User error (bad args, bad config, path is not a vault)
// 2 = System error (git failed or missing, I/O error, unparsable status)
// 3 = Conflict (existing repository fails its status check)
const (
	ExitSuccess     = 0
	ExitUserError   = 1
	ExitSystemError = 2
	ExitConflict    = 3
)

// ExitError is an error that carries an exit code for the CLI.
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/errors.As support.
func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewUserError creates an error for user-caused issues (exit code 1).
func NewUserError(message string) *ExitError {
	return &ExitError{Code: ExitUserError, Message: message}
}

// NewSystemError creates an error for system failures (exit code 2).
func NewSystemError(message string) *ExitError {
	return &ExitError{Code: ExitSystemError, Message: message}
}

// NewSystemErrorWithCause creates a system error wrapping an underlying cause.
func NewSystemErrorWithCause(message string, cause error) *ExitError {
	return &ExitError{Code: ExitSystemError, Message: message, Cause: cause}
}

// FromError classifies a domain error into an *ExitError.
// nil stays nil and an existing *ExitError is returned unchanged.
func FromError(err error) *ExitError {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	// A missing git binary is a system error whichever step hit it.
	code := ExitUserError
	switch {
	case errors.Is(err, runner.ErrSpawnFailure):
		code = ExitSystemError
	case errors.Is(err, vault.ErrRepositoryInvalid),
		errors.Is(err, vault.ErrDirtyVault):
		code = ExitConflict
	case errors.Is(err, vault.ErrNotAVault),
		errors.Is(err, vault.ErrUnknownSnapshot):
		code = ExitUserError
	case errors.Is(err, runner.ErrCommandFailure),
		errors.Is(err, vault.ErrDirectoryUnavailable),
		errors.Is(err, vault.ErrRepositoryInitFailed),
		errors.Is(err, vault.ErrConfigFailed),
		errors.Is(err, vault.ErrAnchorFailed),
		errors.Is(err, vault.ErrSnapshotFailed),
		errors.Is(err, vault.ErrRestoreFailed),
		errors.Is(err, git.ErrMalformedStatusRecord),
		errors.Is(err, git.ErrTruncatedRenameEntry):
		code = ExitSystemError
	}
	return &ExitError{Code: code, Message: err.Error(), Cause: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and classifies everything else via FromError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return FromError(err).Code
}
