package logger_test

import (
	"bytes"
	"testing"

	"github.com/kezhuw/traildb/internal/logger"
	"github.com/stretchr/testify/require"
)

func TestLeveledLoggerFiltersSeverity(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewLeveled(&buf, logger.WarnLevel)
	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	l.Warnf("warn %d", 3)
	l.Errorf("error %d\n", 4)
	require.Equal(t, "WARN warn 3\nERROR error 4\n", buf.String())
	require.NoError(t, l.Close())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logger.Level
		err  bool
	}{
		{in: "debug", want: logger.DebugLevel},
		{in: "INFO", want: logger.InfoLevel},
		{in: "warning", want: logger.WarnLevel},
		{in: "Error", want: logger.ErrorLevel},
		{in: "loud", want: logger.InfoLevel, err: true},
	}
	for _, tt := range tests {
		got, err := logger.ParseLevel(tt.in)
		if tt.err {
			require.Error(t, err, tt.in)
		} else {
			require.NoError(t, err, tt.in)
		}
		require.Equal(t, tt.want, got, tt.in)
	}
}

func TestNopCloserKeepsCloser(t *testing.T) {
	require.Equal(t, logger.Discard, logger.NopCloser(nil))
	l := logger.NewLeveled(new(bytes.Buffer), logger.InfoLevel)
	require.Equal(t, l, logger.NopCloser(l))
}
