package config

import (
	"path/filepath"
)

// AppName is used in generating file system paths.
var AppName = "pkdb"

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/pkdb by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// DataDir returns the directory path for the database file.
// Returns ~/.local/share/pkdb by default.
func DataDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/pkdb/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(DataDir(homeDir), "logs")
}

// ConfigFilePath returns the full path to the pkdb.yaml file.
// Returns ~/.config/pkdb/pkdb.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "pkdb.yaml")
}
