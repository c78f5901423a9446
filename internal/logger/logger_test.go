package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestLoggingBeforeInitIsSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		Info("hello", "k", "v")
		Sync()
	})
}

func TestInit(t *testing.T) {
	require.NoError(t, Init("development", "debug", ""))
	assert.NotPanics(t, func() { Debug("after init", "n", 1) })
}

func TestInit_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boltbot.log")
	require.NoError(t, Init("production", "info", path))
	t.Cleanup(func() { _ = Init("development", "info", "") })

	Info("written to file", "request_id", "r1")
	Debug("below level")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written to file"`)
	assert.Contains(t, string(data), `"request_id":"r1"`)
	assert.NotContains(t, string(data), "below level")
}
