package hxpager

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var (
	logger atomic.Pointer[logrus.Logger]
	debug  atomic.Bool
)

// Logger returns the logger bindings use unless WithLogger overrides it.
// It defaults to logrus' standard logger.
func Logger() *logrus.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return logrus.StandardLogger()
}

// SetLogger replaces the package logger. nil restores the default.
func SetLogger(l *logrus.Logger) {
	logger.Store(l)
}

// Debug reports whether debug mode is on. In debug mode binding errors panic
// and every emission checks that the host's data source slot still holds the
// binding's proxy.
func Debug() bool {
	return debug.Load()
}

// SetDebug switches debug mode. It is off by default.
func SetDebug(on bool) {
	debug.Store(on)
}
