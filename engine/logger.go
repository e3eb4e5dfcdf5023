package engine

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

// Logger returns the engine's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// SetLogger configures the engine's logger. Releases triggered by garbage
// collection log from the runtime cleanup goroutine, so swapping is atomic.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}
