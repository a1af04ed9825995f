package vulkan

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var loggerPtr atomic.Pointer[zap.Logger]

func init() {
	loggerPtr.Store(zap.NewNop())
}

// Logger returns the package logger. It discards everything unless
// SetLogger has been called.
func Logger() *zap.Logger {
	return loggerPtr.Load()
}

// SetLogger replaces the package logger. Handle lifecycle events are logged
// at debug level; discarded null handles at warn. Pass nil to go silent again.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerPtr.Store(l)
}
