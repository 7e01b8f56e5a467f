// Package ioconfig loads configuration from files, environment
// variables and flags. This is an impure package handling file system
// operations.
package ioconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/plantkeeper/pkdb/pkg/config"
	"github.com/spf13/viper"
)

// LoadResult contains the loaded configuration and where it came
// from.
type LoadResult struct {
	Config *config.Config

	// SourcePath is the config file used, empty when running on
	// defaults.
	SourcePath string

	// Source is "file", "defaults" or "defaults+env".
	Source string
}

// Load reads configuration from a YAML file. If configPath is empty
// it searches the default locations:
//   - ./pkdb.yaml
//   - ~/.config/pkdb/pkdb.yaml
//
// Precedence: flags > env vars > config file > defaults. Invalid
// values fall back to defaults with a warning, they never abort the
// run.
func Load(configPath string) (*LoadResult, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix("PKDB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Defaults registered before reading, so AutomaticEnv knows which
	// keys to check.
	defaults := config.New()
	v.SetDefault("database.path", defaults.Database.Path)
	v.SetDefault("database.busy_timeout_ms", defaults.Database.BusyTimeoutMs)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("log.destination", defaults.Log.Destination)
	v.SetDefault("jobs_number", defaults.JobsNumber)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		for _, candidate := range searchPaths() {
			if _, err := os.Stat(candidate); err == nil {
				v.SetConfigFile(candidate)
				break
			}
		}
	}

	configFileRead := false
	usedConfigPath := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if configPath != "" {
				return nil, fmt.Errorf("config file not found: %s", configPath)
			}
		} else if configPath != "" || v.ConfigFileUsed() != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileRead = true
		usedConfigPath = v.ConfigFileUsed()
	}

	var loaded config.Config
	if err := v.Unmarshal(&loaded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Loaded values run through the option functions, so enum and
	// range validation applies to file and env values alike.
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptDatabasePath(loaded.Database.Path),
		config.OptDatabaseBusyTimeoutMs(loaded.Database.BusyTimeoutMs),
		config.OptLogLevel(loaded.Log.Level),
		config.OptLogFormat(loaded.Log.Format),
		config.OptLogDestination(loaded.Log.Destination),
		config.OptJobsNumber(loaded.JobsNumber),
	})

	source := "defaults"
	if configFileRead {
		source = "file"
	} else if hasEnvVars() {
		source = "defaults+env"
	}

	return &LoadResult{
		Config:     cfg,
		SourcePath: usedConfigPath,
		Source:     source,
	}, nil
}

func searchPaths() []string {
	paths := []string{"./pkdb.yaml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, config.ConfigFilePath(homeDir))
	}
	return paths
}

// hasEnvVars checks if any PKDB_* environment variables are set.
func hasEnvVars() bool {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PKDB_") {
			return true
		}
	}
	return false
}
