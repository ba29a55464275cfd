package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/h0rv/posdash/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetBeforeInitIsNop(t *testing.T) {
	log = nil
	l := Get()
	require.NotNil(t, l)
	l.Info("dropped")
	assert.NoError(t, Sync())
}

func TestInitWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(config.LogConfig{Level: "info", Format: "json"}, &buf)
	t.Cleanup(func() { log = nil })

	Named("gateway").Info("request", zap.String("method", "GET"))
	Get().Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, `"msg":"request"`)
	assert.Contains(t, out, `"logger":"gateway"`)
	assert.Contains(t, out, `"method":"GET"`)
	assert.NotContains(t, out, "hidden")
}

func TestUpdateLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(config.LogConfig{Level: "warn", Format: "console"}, &buf)
	t.Cleanup(func() { log = nil })

	Get().Info("before")
	UpdateLevel("debug")
	Get().Debug("after")

	assert.NotContains(t, buf.String(), "before")
	assert.Contains(t, buf.String(), "after")
}

func TestInitFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "posdash.log")
	require.NoError(t, Init(config.LogConfig{Level: "info", Format: "json", Output: "file", FilePath: path}))
	t.Cleanup(func() { log = nil })

	Get().Info("to file")
	require.NoError(t, Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}
