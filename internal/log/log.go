// Package log provides context-aware leveled logging for vault.
package log

import (
	"context"
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

type ctxKey struct{}

// LevelEnv names the environment variable that overrides the log level.
const LevelEnv = "VAULT_LOG_LEVEL"

// New creates a logger writing to out at the given level.
func New(out io.Writer, level charmlog.Level) *charmlog.Logger {
	return charmlog.NewWithOptions(out, charmlog.Options{
		Level:  level,
		Prefix: "vault",
	})
}

// ParseLevel maps a level name to a charmlog level.
// Unknown or empty names yield the fallback.
func ParseLevel(name string, fallback charmlog.Level) charmlog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return charmlog.DebugLevel
	case "info":
		return charmlog.InfoLevel
	case "warn", "warning":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return fallback
	}
}

// LevelFromEnv resolves the level for a CLI run. Verbose forces debug;
// otherwise $VAULT_LOG_LEVEL is consulted, defaulting to warn.
func LevelFromEnv(verbose bool) charmlog.Level {
	if verbose {
		return charmlog.DebugLevel
	}
	return ParseLevel(os.Getenv(LevelEnv), charmlog.WarnLevel)
}

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, l *charmlog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger from context.
// Returns a logger that discards everything if none is attached.
func FromContext(ctx context.Context) *charmlog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*charmlog.Logger); ok && l != nil {
			return l
		}
	}
	return charmlog.New(io.Discard)
}
