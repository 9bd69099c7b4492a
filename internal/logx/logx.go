// Package logx wraps zerolog for the structured, in-band reporting that §7
// of the reconstruction spec requires for recoverable numerical
// degeneracies: back-facing fusion rays, unset voxels, CG non-convergence,
// P3P colinearity. Every driver accepts a *Logger via a functional option
// and falls back to a discard logger so library use without explicit
// wiring stays silent.
package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is a thin field-first wrapper around zerolog.Logger.
type Logger struct {
	z zerolog.Logger
}

// New builds a Logger writing timestamped JSON lines (zerolog's default
// format) to w.
func New(w io.Writer) *Logger {
	return &Logger{z: zerolog.New(w).With().Timestamp().Logger()}
}

// Discard returns a Logger that drops everything; the default for drivers
// constructed without WithLogger.
func Discard() *Logger {
	return &Logger{z: zerolog.Nop()}
}

// Default writes to stderr, used by the cmd/ front ends.
func Default() *Logger {
	return New(os.Stderr)
}

// Warn logs a recoverable degeneracy: skipped back-facing ray, unset
// voxel, rejected P3P candidate, CG iteration cap reached.
func (l *Logger) Warn(op, msg string, fields map[string]any) {
	if l == nil {
		return
	}
	ev := l.z.Warn().Str("op", op)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

// Debug logs progress detail (voxel counts, LM iteration stats).
func (l *Logger) Debug(op, msg string, fields map[string]any) {
	if l == nil {
		return
	}
	ev := l.z.Debug().Str("op", op)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}
