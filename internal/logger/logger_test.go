package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T, f func()) string {
	t.Helper()

	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	f()

	return buf.String()
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { _ = SetLevel("info") })

	tests := []struct {
		name        string
		level       string
		expectLevel LogLevel
		expectError bool
	}{
		{"trace", "trace", LevelTrace, false},
		{"debug", "debug", LevelDebug, false},
		{"info", "info", LevelInfo, false},
		{"warn", "warn", LevelWarn, false},
		{"warning", "warning", LevelWarn, false},
		{"error", "error", LevelError, false},
		{"fatal", "fatal", LevelFatal, false},
		{"uppercase", "INFO", LevelInfo, false},
		{"padded", "  debug ", LevelDebug, false},
		{"invalid", "verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SetLevel(tt.level)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectLevel, Log.Level())
		})
	}
}

func TestZeroLoggerDefaultsToInfo(t *testing.T) {
	var l Logger
	assert.Equal(t, LevelInfo, l.Level())
	assert.Equal(t, "info", l.Level().String())
}

func TestLoggerLevels(t *testing.T) {
	t.Cleanup(func() { _ = SetLevel("info") })

	t.Run("debug_level_logs_debug", func(t *testing.T) {
		require.NoError(t, SetLevel("debug"))

		output := captureOutput(t, func() {
			Log.Debug("debug message")
			Log.Debugf("debug %s", "formatted")
		})
		assert.Contains(t, output, "debug message")
		assert.Contains(t, output, "debug formatted")
	})

	t.Run("info_level_hides_debug", func(t *testing.T) {
		require.NoError(t, SetLevel("info"))

		output := captureOutput(t, func() {
			Log.Debug("hidden")
			Log.Infof("info %s", "formatted")
		})
		assert.NotContains(t, output, "hidden")
		assert.Contains(t, output, "info formatted")
	})

	t.Run("error_level_blocks_lower_messages", func(t *testing.T) {
		require.NoError(t, SetLevel("error"))

		output := captureOutput(t, func() {
			Log.Info("should not appear")
			Log.Warn("should not appear")
			Log.Error("should appear")
		})
		assert.NotContains(t, output, "should not appear")
		assert.Contains(t, output, "should appear")
	})
}

func TestSetOutputRestores(t *testing.T) {
	orig := pterm.Info.Writer

	var buf bytes.Buffer
	restore := SetOutput(&buf)
	assert.Equal(t, &buf, pterm.Info.Writer)
	assert.Equal(t, &buf, pterm.Debug.Writer)

	restore()
	assert.Equal(t, orig, pterm.Info.Writer)
}

func TestInitPterm(t *testing.T) {
	restore := SetOutput(os.Stdout)
	defer restore()

	InitPterm()

	assert.Equal(t, os.Stderr, pterm.Info.Writer)
	assert.Equal(t, os.Stderr, pterm.Success.Writer)
	assert.Equal(t, os.Stderr, pterm.Warning.Writer)
	assert.Equal(t, os.Stderr, pterm.Error.Writer)
	assert.Equal(t, os.Stderr, pterm.Debug.Writer)
}

func TestLogLevelOrdering(t *testing.T) {
	assert.Less(t, int(LevelTrace), int(LevelDebug))
	assert.Less(t, int(LevelDebug), int(LevelInfo))
	assert.Less(t, int(LevelInfo), int(LevelWarn))
	assert.Less(t, int(LevelWarn), int(LevelError))
	assert.Less(t, int(LevelError), int(LevelFatal))
}
