// Package config provides configuration and path management for the Rehber360 desktop shell.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/rehber360/rehber360-desktop/internal/constants"
)

// HomeEnvVar overrides the app data directory. Used by tests and portable installs.
const HomeEnvVar = "REHBER360_HOME"

// AppDataDirectory returns the per-user application data directory.
//
// Locations:
//   - Windows: %APPDATA%\Rehber360
//   - macOS: ~/Library/Application Support/Rehber360
//   - Linux: ~/.config/Rehber360
func AppDataDirectory() string {
	if dir := os.Getenv(HomeEnvVar); dir != "" {
		return dir
	}

	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), constants.AppID)
			}
			appData = filepath.Join(homeDir, "AppData", "Roaming")
		}
		return filepath.Join(appData, constants.AppName)
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), constants.AppID)
		}
		return filepath.Join(homeDir, ".config", constants.AppName)
	}
	return filepath.Join(configDir, constants.AppName)
}

// LogDirectory returns the directory holding main.log and its rotations.
func LogDirectory() string {
	return filepath.Join(AppDataDirectory(), constants.LogDirName)
}

// EnsureLogDirectory creates the log directory if it doesn't exist.
// Uses 0700 permissions to restrict log access to owner only.
func EnsureLogDirectory() error {
	return os.MkdirAll(LogDirectory(), 0700)
}

// DatabasePath returns the path of the local database file.
func DatabasePath() string {
	return filepath.Join(AppDataDirectory(), constants.DatabaseFileName)
}

// BackupDirectory returns the default directory for database backups.
func BackupDirectory() string {
	return filepath.Join(AppDataDirectory(), constants.BackupDirName)
}

// StorePath returns the path of the settings store.
func StorePath() string {
	return filepath.Join(AppDataDirectory(), constants.StoreFileName)
}

// WindowStatePath returns the path of the persisted window geometry.
func WindowStatePath() string {
	return filepath.Join(AppDataDirectory(), constants.WindowStateFileName)
}

// DefaultConfigPath returns the path of shell.conf.
func DefaultConfigPath() string {
	return filepath.Join(AppDataDirectory(), constants.ConfigFileName)
}

// LegacyDatabaseCandidates lists where earlier desktop builds kept their database,
// in the order they should be probed.
func LegacyDatabaseCandidates() []string {
	var candidates []string

	if dataDir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dataDir, "rehber360-electron", "database.db"))
		candidates = append(candidates, filepath.Join(dataDir, constants.AppName, "database.db"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".rehber360", "database.db"))
	}
	candidates = append(candidates, filepath.Join(".", "electron-db", "database.db"))

	return candidates
}
