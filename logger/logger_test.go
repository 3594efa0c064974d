package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		SetVerbose(false)
	})
	return &buf
}

func TestLogger_SeverityMarkers(t *testing.T) {
	buf := captureOutput(t)

	Warn("missing %s", "a.png")
	Error("upload failed")
	Success("uploaded")

	out := buf.String()
	assert.Contains(t, out, "⚠️  missing a.png")
	assert.Contains(t, out, "❌ upload failed")
	assert.Contains(t, out, "✅ uploaded")
}

func TestLogger_DebugRequiresVerbose(t *testing.T) {
	buf := captureOutput(t)

	Debug("hidden")
	assert.Empty(t, buf.String())

	SetVerbose(true)
	Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_FileSink(t *testing.T) {
	captureOutput(t)
	logPath := filepath.Join(t.TempDir(), "assetkit.log")

	SetLogFile(logPath)
	Warn("written to file")
	require.NoError(t, Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "WARN  written to file")
}
