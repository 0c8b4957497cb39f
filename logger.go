package sprite

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"weak"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for sprite.
// By default, sprite produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior). The logger
// is handed to the backend of every live batch that accepts one, and to the
// backends of batches created afterwards.
//
// Log levels used by sprite:
//   - [slog.LevelDebug]: dropped and culled sprites, per-frame statistics
//   - [slog.LevelWarn]: batch full
//   - [slog.LevelError]: GPU resource creation failures
//
// Example:
//
//	sprite.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	// Propagate to live backends that support logging.
	liveMu.Lock()
	defer liveMu.Unlock()
	for p := range live {
		if b := p.Value(); b != nil {
			propagateLogger(b.backend, l)
		} else {
			delete(live, p)
		}
	}
}

// Logger returns the current logger used by sprite.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by backends that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// live holds the batches SetLogger propagates to. Collected batches drop out
// on the next SetLogger.
var (
	liveMu sync.Mutex
	live   = make(map[weak.Pointer[Batch]]struct{})
)

// track registers b for logger propagation and hands it the current logger.
func track(b *Batch) {
	liveMu.Lock()
	live[weak.Make(b)] = struct{}{}
	liveMu.Unlock()
	propagateLogger(b.backend, Logger())
}

// propagateLogger passes the logger to a backend if it implements
// the loggerSetter interface.
func propagateLogger(b Backend, l *slog.Logger) {
	if ls, ok := b.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
