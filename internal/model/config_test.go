package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultAppConfig(), cfg)
	assert.Equal(t, 30*time.Minute, cfg.RefreshInterval())
	assert.Equal(t, 500*time.Millisecond, cfg.Debounce())
	assert.Equal(t, 2*time.Minute, cfg.ActivityInterval())
	assert.Equal(t, 5*time.Second, cfg.AlertDuration())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  base_url: https://mail.example.com/
search:
  debounce_ms: 250
  min_chars: 0
display:
  default_folder: sent
`), 0o600))
	t.Setenv("MAILASSIST_SESSION_REFRESH_INTERVAL_MIN", "10")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://mail.example.com", cfg.Server.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce())
	assert.Equal(t, 3, cfg.Search.MinChars, "non-positive thresholds fall back")
	assert.Equal(t, 10, cfg.Search.Limit)
	assert.Equal(t, "sent", cfg.Display.DefaultFolder)
	assert.Equal(t, 10*time.Minute, cfg.RefreshInterval())
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfig_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")
	cfg := DefaultAppConfig()
	cfg.Server.BaseURL = "http://10.0.0.5:5000"
	cfg.Dashboard.RefreshIntervalSec = 60

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:5000", loaded.Server.BaseURL)
	assert.Equal(t, time.Minute, loaded.ActivityInterval())
}

func TestEmail_Sender(t *testing.T) {
	assert.Equal(t, "Ann", Email{SenderName: "Ann", SenderEmail: "ann@example.com"}.Sender())
	assert.Equal(t, "ann@example.com", Email{SenderEmail: "ann@example.com"}.Sender())
}

func TestBulkAction_Valid(t *testing.T) {
	assert.True(t, BulkDelete.Valid())
	assert.False(t, BulkAction("archive").Valid())
}
