package main

import (
	"fmt"
	"os"

	"github.com/plantkeeper/pkdb/internal/ioconfig"
	"github.com/plantkeeper/pkdb/internal/iologger"
	pkgconfig "github.com/plantkeeper/pkdb/pkg/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	dbPath   string
	logLevel string
	cfg      *pkgconfig.Config
)

func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pkdb",
		Short: "pkdb manages the PlantKeeper database lifecycle",
		Long: `pkdb is a CLI tool for managing the PlantKeeper SQLite database:
bringing old database files up to the current normalized taxonomy
schema, verifying referential integrity, and seeding taxonomy data.

The tool provides three main phases:
  - migrate: Detect the present schema shape and evolve it in place
  - check:   Scan the whole database for foreign key violations
  - seed:    Import family/genus/species rows from a CSV file

Configuration precedence (highest to lowest):
  1. CLI flags (--db, --log-level)
  2. Environment variables (PKDB_*)
  3. Config file (pkdb.yaml)
  4. Built-in defaults

Environment Variables:
  Nested fields use underscores (database.path → PKDB_DATABASE_PATH).

  Examples:
    PKDB_DATABASE_PATH            SQLite database file
    PKDB_DATABASE_BUSY_TIMEOUT_MS Write lock wait, milliseconds
    PKDB_LOG_LEVEL                Log level (debug/info/warn/error)
    PKDB_JOBS_NUMBER              Parallel workers for name parsing`,
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: bootstrap,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pkdb.yaml or ~/.config/pkdb/pkdb.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "",
		"SQLite database file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level: debug, info, warn or error (overrides config)")

	// Override version flag to use -V
	rootCmd.Flags().BoolP("version", "V", false, "version for pkdb")

	rootCmd.AddCommand(getMigrateCmd())
	rootCmd.AddCommand(getCheckCmd())
	rootCmd.AddCommand(getSeedCmd())

	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	// Auto-generate a documented config file on first run.
	if cfgFile == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			if _, err := os.Stat(pkgconfig.ConfigFilePath(homeDir)); os.IsNotExist(err) {
				if generatedPath, err := ioconfig.GenerateDefaultConfig(); err == nil {
					fmt.Printf("Generated default config at: %s\n", generatedPath)
				}
			}
		}
	}

	result, err := ioconfig.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg = result.Config

	var opts []pkgconfig.Option
	if dbPath != "" {
		opts = append(opts, pkgconfig.OptDatabasePath(dbPath))
	}
	if logLevel != "" {
		opts = append(opts, pkgconfig.OptLogLevel(logLevel))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		opts = append(opts, pkgconfig.OptHomeDir(homeDir))
	}
	cfg.Update(opts)

	logDir := ""
	if cfg.HomeDir != "" {
		logDir = pkgconfig.LogDir(cfg.HomeDir)
		if cfg.Log.Destination == "file" {
			if err := os.MkdirAll(logDir, 0755); err != nil {
				return fmt.Errorf("failed to create log directory: %w", err)
			}
		}
	}
	if err := iologger.Init(logDir, cfg.Log, true); err != nil {
		return err
	}

	switch result.Source {
	case "file":
		fmt.Printf("Using config from: %s\n", result.SourcePath)
	case "defaults+env":
		fmt.Println("Using built-in defaults with environment variable overrides")
	case "defaults":
		fmt.Println("Using built-in defaults (no config file)")
	}

	return nil
}

// getConfig returns the loaded configuration (for use in subcommands)
func getConfig() *pkgconfig.Config {
	return cfg
}
