// Package debugutil provides the --debug leveled logger: pretty-printed
// dumps of internal structures via github.com/kr/pretty and
// goroutine-tagged lines via github.com/petermattis/goid, both already
// present in the teacher's indirect dependency graph. Grounded on the
// runner's worker pool needing attributable concurrent log output — the
// same technique the teacher's runtime would need were it to log from
// its own worker pool.
package debugutil

import (
	"fmt"
	"io"
	"sync"

	"github.com/kr/pretty"
	"github.com/petermattis/goid"
)

// Level is a debug-logger verbosity level.
type Level int

const (
	LevelInfo Level = iota
	LevelDebug
)

// Logger writes leveled, goroutine-tagged lines to an underlying
// writer, serialized by a mutex since the runner's worker pool logs
// from multiple goroutines concurrently.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
}

// NewLogger returns a Logger writing to out at the given level.
func NewLogger(out io.Writer, level Level) *Logger {
	return &Logger{out: out, level: level}
}

// Infof always logs.
func (l *Logger) Infof(format string, args ...any) {
	l.logf(LevelInfo, format, args...)
}

// Debugf logs only when the logger's level is LevelDebug, tagging the
// line with the calling goroutine id so interleaved worker output stays
// attributable (the teacher's runtime would need the same technique
// were it to log from its worker pool).
func (l *Logger) Debugf(format string, args ...any) {
	if l.level < LevelDebug {
		return
	}
	l.logf(LevelDebug, "[g%d] "+format, append([]any{goid.Get()}, args...)...)
}

// Dump pretty-prints v (via kr/pretty) at debug level, for internal
// structures too large or too deeply nested for a plain Debugf line.
func (l *Logger) Dump(label string, v any) {
	if l.level < LevelDebug {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "[g%d] %s:\n%s\n", goid.Get(), label, pretty.Sprint(v))
}

func (l *Logger) logf(level Level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, format+"\n", args...)
}
