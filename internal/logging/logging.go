// Package logging wraps the standard library's log.Logger with leveled
// helpers and humanized byte/duration formatting, matching the plain,
// unadorned reporting style the domain favors over a structured logging
// framework.
package logging

import (
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// Logger is a thin leveled wrapper over *log.Logger.
type Logger struct {
	*log.Logger
}

// New returns a Logger writing to os.Stderr with a timestamp prefix.
func New() *Logger {
	return &Logger{Logger: log.New(os.Stderr, "", log.LstdFlags)}
}

// Info logs an informational line.
func (l *Logger) Info(format string, args ...any) {
	l.Printf("INFO  "+format, args...)
}

// Warn logs a warning line.
func (l *Logger) Warn(format string, args ...any) {
	l.Printf("WARN  "+format, args...)
}

// Fatal logs an error line and exits the process with status 1.
func (l *Logger) Fatal(format string, args ...any) {
	l.Printf("FATAL "+format, args...)
	os.Exit(1)
}

// Phase logs the start of a named build/merge/query phase and returns a
// closer to call when the phase completes, reporting elapsed time.
func (l *Logger) Phase(name string) func() {
	start := time.Now()
	l.Info("%s: starting", name)
	return func() {
		l.Info("%s: done in %s", name, time.Since(start).Round(time.Millisecond))
	}
}

// Bytes formats a byte count the way progress/summary lines report
// sizes (e.g. "4.2 MB").
func Bytes(n uint64) string { return humanize.Bytes(n) }

// Comma formats a count with thousands separators (e.g. edge/color
// counts in summary lines).
func Comma(n uint64) string { return humanize.Comma(int64(n)) }
