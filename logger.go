package blit

import (
	"log/slog"
	"sync/atomic"
)

// silent drops every record; Enabled is false at all levels, so disabled
// log calls in the blit path do not build attributes.
var silent = slog.New(slog.DiscardHandler)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(silent)
}

// SetLogger routes the log output of blit and every backend package to l.
// Nothing is logged until SetLogger is called; nil turns logging off again.
//
// Debug records name the chosen path, the tile count and X11 round trips.
// Warn records carry each *BackendError returned from Draw.
//
//	blit.SetLogger(slog.New(slog.NewTextHandler(os.Stderr,
//		&slog.HandlerOptions{Level: slog.LevelDebug})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	logger.Store(l)
}

// Logger returns the logger installed by SetLogger. It may be called from
// any goroutine.
func Logger() *slog.Logger {
	return logger.Load()
}
