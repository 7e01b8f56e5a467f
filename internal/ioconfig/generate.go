package ioconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/plantkeeper/pkdb/pkg/config"
	"gopkg.in/yaml.v3"
)

// configYAML is the documented default config written by
// GenerateDefaultConfig. All values are commented out; uncommenting
// one overrides the built-in default.
const configYAML = `# PlantKeeper database tool configuration.
#
# Every setting is optional. Uncomment a line to override the
# default. Environment variables with the PKDB_ prefix override this
# file, command line flags override both.

database:
  # Location of the SQLite database file. The directory must exist.
  # path: plant-keeper.db

  # How long a write waits on the file lock, in milliseconds.
  # busy_timeout_ms: 5000

log:
  # Logging level: debug, info, warn or error.
  # level: info

  # Log format: text or json.
  # format: text

  # Where logs go: stderr, stdout or file.
  # destination: stderr

# Number of concurrent workers for name parsing during seeding.
# Defaults to the number of CPU cores.
# jobs_number: 8
`

// GenerateDefaultConfig creates a documented default config file at
// ~/.config/pkdb/pkdb.yaml. Does not overwrite an existing file.
func GenerateDefaultConfig() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	configPath := config.ConfigFilePath(homeDir)

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists at %s", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(configYAML), 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configPath, nil
}

// ValidateGeneratedConfig reads a config file back and checks it is
// well-formed YAML that unmarshals into a Config. Used by tests.
func ValidateGeneratedConfig(configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	return nil
}
