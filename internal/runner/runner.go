// Package runner spawns external commands and captures their output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/gorewood/vault/internal/log"
)

// ErrSpawnFailure indicates the executable could not be found or started.
var ErrSpawnFailure = errors.New("spawn failure")

// ErrCommandFailure indicates the command ran and exited nonzero.
var ErrCommandFailure = errors.New("command failure")

// SpawnError is returned by Execute when the process never ran.
type SpawnError struct {
	Command string
	Err     error
}

// Error implements the error interface.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("cannot spawn %s: %v", e.Command, e.Err)
}

// Unwrap returns the underlying exec error.
func (e *SpawnError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrSpawnFailure.
func (e *SpawnError) Is(target error) bool {
	return target == ErrSpawnFailure
}

// CommandError describes a command that exited with a nonzero status.
type CommandError struct {
	Command  string
	Args     []string
	ExitCode int
	Stderr   string
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s: exit status %d", e.Command, strings.Join(e.Args, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Is reports whether target is ErrCommandFailure.
func (e *CommandError) Is(target error) bool {
	return target == ErrCommandFailure
}

// Result holds the outcome of one process invocation.
type Result struct {
	Command  string
	Args     []string
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Err converts a nonzero exit into a *CommandError. Returns nil on success.
func (r Result) Err() error {
	if r.ExitCode == 0 {
		return nil
	}
	return &CommandError{
		Command:  r.Command,
		Args:     r.Args,
		ExitCode: r.ExitCode,
		Stderr:   strings.TrimSpace(string(r.Stderr)),
	}
}

// Runner executes one named program in a fixed working directory.
// An empty Dir runs in the current directory.
type Runner struct {
	Name string
	Dir  string
}

// New creates a Runner for the named program.
func New(name, dir string) *Runner {
	return &Runner{Name: name, Dir: dir}
}

// Execute runs the program with args and blocks until it exits.
//
// A nonzero exit status is not an error here: it is reported through
// Result.ExitCode. The only error Execute returns is a *SpawnError, or
// the context error when ctx ends before the process does.
func (r *Runner) Execute(ctx context.Context, args ...string) (Result, error) {
	logger := log.FromContext(ctx)

	cmd := exec.CommandContext(ctx, r.Name, args...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	res := Result{Command: r.Name, Args: args}

	err := cmd.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}

		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			logger.Debug("spawn failed", "cmd", r.Name, "args", args, "dir", r.Dir, "err", err)
			return res, &SpawnError{Command: r.Name, Err: err}
		}
		res.ExitCode = exitErr.ExitCode()
	}

	res.Stdout = stdout.Bytes()
	res.Stderr = stderr.Bytes()
	logger.Debug("exec", "cmd", r.Name, "args", args, "dir", r.Dir, "exit", res.ExitCode)
	return res, nil
}

// Check runs the program and converts a nonzero exit into a *CommandError.
func (r *Runner) Check(ctx context.Context, args ...string) (Result, error) {
	res, err := r.Execute(ctx, args...)
	if err != nil {
		return res, err
	}
	return res, res.Err()
}
