package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("File values", func(t *testing.T) {
		path := writeConfig(t, "api_url: https://trays.example.com\nuser_id: me\ntimeout: 3s\n")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "https://trays.example.com", cfg.APIURL)
		assert.Equal(t, "me", cfg.UserID)
		assert.Equal(t, 3*time.Second, cfg.Timeout)
	})

	t.Run("Environment overrides file", func(t *testing.T) {
		path := writeConfig(t, "api_url: https://trays.example.com\n")
		t.Setenv("TRAYTIME_API_URL", "http://localhost:9000")
		t.Setenv("TRAYTIME_TIMEOUT", "250ms")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9000", cfg.APIURL)
		assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	})

	t.Run("Unset environment keeps file values", func(t *testing.T) {
		path := writeConfig(t, "user_id: from-file\n")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.UserID)
		assert.Equal(t, Default().APIURL, cfg.APIURL)
		assert.Equal(t, Default().Timeout, cfg.Timeout)
	})

	t.Run("Explicit file must exist", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("Malformed file", func(t *testing.T) {
		_, err := Load(writeConfig(t, "timeout: [nope\n"))
		assert.Error(t, err)
	})
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "config.yaml", filepath.Base(DefaultPath()))
	assert.Equal(t, AppName, filepath.Base(filepath.Dir(DefaultPath())))
}
