// Package config provides configuration management for pkdb.
//
// This package has no I/O dependencies (no file operations, no network
// calls). Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > pkdb.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in pkdb.yaml)
//
// # Environment Variables
//
// Use PKDB_ prefix with underscores for nesting:
//
//	PKDB_DATABASE_PATH=/var/lib/plantkeeper/plant-keeper.db
//	PKDB_LOG_LEVEL=info
//	PKDB_JOBS_NUMBER=8
package config

import (
	"runtime"
)

// Config represents the complete pkdb configuration.
type Config struct {
	// Database contains SQLite storage settings.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers for parallel
	// operations such as scientific name parsing during seeding.
	// Default value is set according to the number of available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string `mapstructure:"-" yaml:"-"`
}

// DatabaseConfig contains SQLite storage parameters.
type DatabaseConfig struct {
	// Path is the location of the SQLite database file.
	// The special value ":memory:" creates a transient in-memory
	// database, used by tests.
	Path string `mapstructure:"path" yaml:"path"`

	// BusyTimeoutMs is how long a write waits on the file lock before
	// giving up.
	BusyTimeoutMs int `mapstructure:"busy_timeout_ms" yaml:"busy_timeout_ms"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT.
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Database: DatabaseConfig{
			Path:          "plant-keeper.db",
			BusyTimeoutMs: 5000,
		},
		Log: LogConfig{
			Format:      "text",
			Level:       "info",
			Destination: "stderr",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}
