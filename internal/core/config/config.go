// Package config handles configuration loading and validation for pear.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/pear/internal/core/task"
)

// Backend names a kv.Store implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// IsValid reports whether b is a known backend.
func (b Backend) IsValid() bool {
	switch b {
	case BackendFile, BackendSQLite, BackendMemory:
		return true
	default:
		return false
	}
}

// TUI theme names. Auto follows the dark flag of the active background.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Config holds the application configuration.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"  toml:"storage"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Tasks    TasksConfig    `yaml:"tasks"    toml:"tasks"`
	TUI      TUIConfig      `yaml:"tui"      toml:"tui"`
	DataDir  string         `yaml:"-"        toml:"-"` // set by caller, not from config file
}

// StorageConfig selects where state is persisted.
type StorageConfig struct {
	Backend Backend `yaml:"backend" toml:"backend"`
	// Watch reloads state written by other pear processes. Only the file
	// backend supports it. nil means enabled.
	Watch *bool `yaml:"watch" toml:"watch"`
}

// DatabaseConfig tunes the sqlite backend.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns" toml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns" toml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"   toml:"busy_timeout"` // milliseconds
}

// TasksConfig holds defaults for new tasks.
type TasksConfig struct {
	DefaultType task.Type `yaml:"default_type" toml:"default_type"`
}

// TUIConfig holds presentation settings.
type TUIConfig struct {
	Theme string `yaml:"theme" toml:"theme"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend: BackendFile,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 2,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
		Tasks: TasksConfig{
			DefaultType: task.DefaultType,
		},
		TUI: TUIConfig{
			Theme: ThemeAuto,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided
// dataDir. Files ending in .toml are parsed as TOML, anything else as YAML.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := unmarshal(configPath, data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func unmarshal(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.Tasks.DefaultType == "" {
		c.Tasks.DefaultType = defaults.Tasks.DefaultType
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if !c.Storage.Backend.IsValid() {
		return fmt.Errorf("storage.backend %q must be one of file, sqlite, memory", c.Storage.Backend)
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}

	if !c.Tasks.DefaultType.IsValid() {
		return fmt.Errorf("tasks.default_type %q is not a known task type", c.Tasks.DefaultType)
	}

	if !IsValidTheme(c.TUI.Theme) {
		return fmt.Errorf("tui.theme %q must be one of auto, light, dark", c.TUI.Theme)
	}

	return nil
}

// WatchEnabled reports whether external changes should be followed.
func (c *Config) WatchEnabled() bool {
	if c.Storage.Backend != BackendFile {
		return false
	}
	return c.Storage.Watch == nil || *c.Storage.Watch
}

// StateDir returns the directory used by the file backend.
func (c *Config) StateDir() string {
	return filepath.Join(c.DataDir, "state")
}

// LogFile returns the default log file path.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "pear.log")
}

// IsValidTheme reports whether name is a supported TUI theme.
func IsValidTheme(name string) bool {
	switch name {
	case ThemeAuto, ThemeLight, ThemeDark:
		return true
	default:
		return false
	}
}
