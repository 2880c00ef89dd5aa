package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Writer(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(LogConfig{Writer: &buf, Level: "warn"})
	require.NoError(t, err)

	log.Info("hidden %d", 1)
	log.Warn("shown %d", 2)
	log.Error("also shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown 2")
	assert.Contains(t, out, "[ERROR] also shown")
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(LogConfig{Writer: &buf, Level: "error"})
	require.NoError(t, err)

	log.Debug("before")
	log.SetLevel(DebugLevel)
	log.Debug("after")

	assert.NotContains(t, buf.String(), "before")
	assert.Contains(t, buf.String(), "[DEBUG] after")
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pdf-tools.log")
	log, err := NewLogger(LogConfig{Output: "file", FilePath: path})
	require.NoError(t, err)

	log.Info("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] written to file")
}

func TestNewLogger_EnvFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.log")
	t.Setenv(EnvOutput, "file")
	t.Setenv(EnvFilePath, path)
	t.Setenv(EnvLevel, "debug")

	log, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	log.Debug("from env")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[DEBUG] from env")
}

func TestNewLogger_InvalidOutput(t *testing.T) {
	_, err := NewLogger(LogConfig{Output: "syslog"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warning", WarnLevel},
		{" error ", ErrorLevel},
		{"fatal", FatalLevel},
		{"verbose", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	log.Debug("x")
	log.Info("x")
	log.Warn("x")
	log.Error("x")
}
