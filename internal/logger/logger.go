// Package logger builds the structured logger used across localchat.
//
// The TUI owns the terminal, so logs are written as JSON lines to a file
// (or discarded). Error attributes are expanded into a group holding the
// message and, when the error was created or wrapped with
// github.com/pkg/errors, its stack trace.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Attribute keys shared by all packages
const (
	ERROR    = "error"
	MODEL    = "model"
	REQUEST  = "request_id"
	EXCHANGE = "exchange"
	STATUS   = "status"
	URL      = "url"
)

// New builds a JSON logger writing to w. Verbose lowers the level to debug.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		ReplaceAttr: replaceAttr,
		Level:       level,
	})
	return slog.New(handler)
}

// Open builds a logger appending to the file at path, creating parent
// directories as needed. The returned closer releases the file.
func Open(path string, verbose bool) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", errors.WithStack(err))
	}

	return New(f, verbose), f, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindAny {
		return a
	}
	if err, ok := a.Value.Any().(error); ok {
		a.Value = fmtErr(err)
	}
	return a
}

// fmtErr returns a group with keys "msg" and "trace". The trace is omitted
// when no error in the chain carries a pkg/errors stack.
func fmtErr(err error) slog.Value {
	attrs := []slog.Attr{slog.String("msg", err.Error())}

	type stackTracer interface {
		StackTrace() errors.StackTrace
	}

	// The innermost stack points closest to where the error originated.
	var st stackTracer
	for e := err; e != nil; e = errors.Unwrap(e) {
		if x, ok := e.(stackTracer); ok {
			st = x
		}
	}

	if st != nil {
		attrs = append(attrs, slog.Any("trace", traceLines(st.StackTrace())))
	}

	return slog.GroupValue(attrs...)
}

func traceLines(frames errors.StackTrace) []string {
	lines := make([]string, len(frames))

	// Walk outermost first so consecutive runtime frames at the bottom
	// of the stack can be dropped.
	skipped := 0
	skipping := true
	for i := len(frames) - 1; i >= 0; i-- {
		pc := uintptr(frames[i]) - 1
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			lines[i] = "unknown"
			skipping = false
			continue
		}

		name := fn.Name()
		if skipping && strings.HasPrefix(name, "runtime.") {
			skipped++
			continue
		}
		skipping = false

		file, line := fn.FileLine(pc)
		lines[i] = fmt.Sprintf("%s %s:%d", name, file, line)
	}

	return lines[:len(lines)-skipped]
}
