package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/pear/internal/core/task"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dataDir := t.TempDir()

	for _, path := range []string{"", filepath.Join(dataDir, "missing.yaml")} {
		cfg, err := Load(path, dataDir)
		require.NoError(t, err)

		assert.Equal(t, BackendFile, cfg.Storage.Backend)
		assert.True(t, cfg.WatchEnabled())
		assert.Equal(t, task.TypePersonal, cfg.Tasks.DefaultType)
		assert.Equal(t, ThemeAuto, cfg.TUI.Theme)
		assert.Equal(t, dataDir, cfg.DataDir)
		assert.Equal(t, filepath.Join(dataDir, "state"), cfg.StateDir())
		assert.Equal(t, filepath.Join(dataDir, "pear.log"), cfg.LogFile())
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
storage:
  backend: sqlite
  watch: false
database:
  busy_timeout: 100
tasks:
  default_type: work
tui:
  theme: dark
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.False(t, cfg.WatchEnabled())
	assert.Equal(t, 100, cfg.Database.BusyTimeout)
	assert.Equal(t, 2, cfg.Database.MaxOpenConns, "unset fields keep defaults")
	assert.Equal(t, task.TypeWork, cfg.Tasks.DefaultType)
	assert.Equal(t, ThemeDark, cfg.TUI.Theme)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[storage]
backend = "memory"

[tui]
theme = "light"
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.False(t, cfg.WatchEnabled(), "watch needs the file backend")
	assert.Equal(t, ThemeLight, cfg.TUI.Theme)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad backend", "storage:\n  backend: redis\n", "storage.backend"},
		{"bad type", "tasks:\n  default_type: chores\n", "tasks.default_type"},
		{"bad theme", "tui:\n  theme: neon\n", "tui.theme"},
		{"bad conns", "database:\n  max_open_conns: -1\n", "max_open_conns"},
		{"bad yaml", "storage: [", "parse config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", tt.content), t.TempDir())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_RequiresDataDir(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data directory")
}
