package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hay-kot/pear/internal/core/config"
	"github.com/hay-kot/pear/internal/pear"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	Storage    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// App is the loaded task list, built in the Before hook
	App *pear.App
}

// flush reports a persistence failure that happened during the command.
// Intents never fail on storage errors, so commands check once at the end.
func (f *Flags) flush() error {
	if err := f.App.PersistErr(); err != nil {
		return fmt.Errorf("changes were not saved: %w", err)
	}
	return nil
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "pear", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "pear")
}
