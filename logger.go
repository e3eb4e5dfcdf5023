package handleguard

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	nopLogger = zap.NewNop()
	logger    atomic.Pointer[zap.Logger]
)

// Logger returns the package logger.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return nopLogger
}

// SetLogger configures the package logger. Automatic releases log from the
// runtime cleanup goroutine, so the logger may be swapped at any time.
// A nil logger restores the no-op default.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}
