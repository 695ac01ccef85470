package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("creates console logger", func(t *testing.T) {
		l, err := New(Config{Level: "info", Console: true})
		require.NoError(t, err)
		defer l.Close()
		assert.NotNil(t, l)
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		l, err := New(Config{Level: "loud", Console: true})
		require.NoError(t, err)
		defer l.Close()
		assert.Equal(t, "info", l.GetZerolog().GetLevel().String())
	})

	t.Run("creates log file and parent directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "guardian.log")
		l, err := New(Config{Level: "info", File: path})
		require.NoError(t, err)
		defer l.Close()

		zl := l.GetZerolog()
		zl.Info().Msg("hello")
		assert.FileExists(t, path)
	})

	t.Run("redacts secrets in file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "guardian.log")
		l, err := New(Config{Level: "info", File: path, Redaction: true})
		require.NoError(t, err)

		zl := l.GetZerolog()
		zl.Info().Str("key", "prt-abcdefghijklmnop1234").Msg("configured")
		require.NoError(t, l.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "prt-abcdefghijklmnop1234")
		assert.Contains(t, string(data), "[REDACTED]")
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.True(t, cfg.Console)
	assert.True(t, cfg.Redaction)
}
