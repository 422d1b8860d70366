package flipbook

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically because texture
// loads log from background goroutines.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for flipbook and its sub-packages.
// By default flipbook produces no log output.
//
// Pass nil to restore the silent default.
//
// Log levels used by flipbook:
//   - [slog.LevelDebug]: per-flip diagnostics (angles, generations, drops)
//   - [slog.LevelInfo]: document lifecycle, mode switches
//   - [slog.LevelWarn]: rasterize and texture failures shown to the user
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by flipbook.
// Sub-packages (fitz/, integration/ggview/) call this to share the same
// configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
