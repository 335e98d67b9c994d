package logger

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
)

type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type LogCloser interface {
	Logger
	io.Closer
}

var Discard LogCloser = nopLogger{}

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...interface{}) {}
func (nopLogger) Infof(format string, args ...interface{})  {}
func (nopLogger) Warnf(format string, args ...interface{})  {}
func (nopLogger) Errorf(format string, args ...interface{}) {}
func (nopLogger) Close() error                              { return nil }

type nopCloser struct {
	Logger
}

func (nopCloser) Close() error { return nil }

func NopCloser(l Logger) LogCloser {
	if l == nil {
		return Discard
	}
	if lc, ok := l.(LogCloser); ok {
		return lc
	}
	return nopCloser{l}
}

// Level is the minimum severity a leveled logger writes.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < DebugLevel || l > ErrorLevel {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel parses a case insensitive level name.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	if strings.EqualFold(s, "warning") {
		return WarnLevel, nil
	}
	return InfoLevel, fmt.Errorf("traildb: unknown log level %q", s)
}

type writerLogger struct {
	mu    sync.Mutex
	w     io.Writer
	level Level
}

func (l *writerLogger) printf(severity Level, format string, args ...interface{}) {
	if severity < l.level {
		return
	}
	var buf bytes.Buffer
	buf.WriteString(severity.String())
	buf.WriteByte(' ')
	fmt.Fprintf(&buf, format, args...)
	if b := buf.Bytes(); b[len(b)-1] != '\n' {
		buf.WriteByte('\n')
	}
	l.mu.Lock()
	l.w.Write(buf.Bytes())
	l.mu.Unlock()
}

func (l *writerLogger) Debugf(format string, args ...interface{}) {
	l.printf(DebugLevel, format, args...)
}

func (l *writerLogger) Infof(format string, args ...interface{}) {
	l.printf(InfoLevel, format, args...)
}

func (l *writerLogger) Warnf(format string, args ...interface{}) {
	l.printf(WarnLevel, format, args...)
}

func (l *writerLogger) Errorf(format string, args ...interface{}) {
	l.printf(ErrorLevel, format, args...)
}

func (l *writerLogger) Close() error {
	if c, ok := l.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// NewLeveled returns a logger writing lines of at least level severity to w.
// Close closes w if it is an io.Closer.
func NewLeveled(w io.Writer, level Level) LogCloser {
	return &writerLogger{w: w, level: level}
}
