// Package logging holds the structured logger shared by the codec packages.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record and reports itself disabled, so callers
// skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger installs l for all codec packages. Pass nil to silence logging
// again. Safe for concurrent use.
//
// Levels:
//   - [slog.LevelDebug]: per-stage timings and search statistics
//   - [slog.LevelInfo]: pipeline lifecycle (files read and written)
//   - [slog.LevelWarn]: non-fatal problems (frames that could not be saved)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the active logger. Never nil.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
