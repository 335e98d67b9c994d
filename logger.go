package traildb

import (
	"io"

	"github.com/kezhuw/traildb/internal/logger"
)

type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// DiscardLogger is a nop Logger.
var DiscardLogger = logger.Discard

// LogLevel is the minimum severity written by loggers from NewLogger.
type LogLevel = logger.Level

const (
	DebugLevel = logger.DebugLevel
	InfoLevel  = logger.InfoLevel
	WarnLevel  = logger.WarnLevel
	ErrorLevel = logger.ErrorLevel
)

// ParseLogLevel parses level names such as "debug" or "warn".
func ParseLogLevel(s string) (LogLevel, error) {
	return logger.ParseLevel(s)
}

// NewLogger returns a Logger writing one line per message of at least level
// severity to w.
func NewLogger(w io.Writer, level LogLevel) Logger {
	return logger.NewLeveled(w, level)
}

var _ Logger = (logger.Logger)(nil)
var _ logger.Logger = (Logger)(nil)
