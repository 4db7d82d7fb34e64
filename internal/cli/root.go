package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/csvingest/internal/config"
	"github.com/vvka-141/csvingest/pkg/csvingest"
)

var rootCmd = &cobra.Command{
	Use:   "csvingest",
	Short: "Load CSV datasets into a relational database",
	Long: `csvingest downloads delimited-text datasets and loads them into PostgreSQL,
MySQL or SQLite.

Two load modes share one decoder and one destination:

  replace  decode the whole source in memory, then drop and recreate the table
  append   create the table from a zero-row probe, then stream bounded batches
           and append each one

Sources are local paths, file:// or http(s):// URLs; gzip is detected and
decompressed transparently. Built-in datasets cover the NYC taxi zone lookup
and the yellow taxi trip records; csvingest.yaml can define more.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or flag combination
  11 - Database connection failed
  12 - Source unreadable or a value failed type coercion
  13 - Table creation or row insert failed`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().String("config", config.ConfigFileName,
		"Path to the config file with connection defaults and dataset presets\n"+
			"A missing file is ignored unless the flag is given explicitly")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

// loadFileConfig loads .env and the config file named by --config.
// Returns nil config if the default file does not exist (not an error).
func loadFileConfig(cmd *cobra.Command) (*config.FileConfig, error) {
	_ = godotenv.Load()

	path := config.ConfigFileName
	explicit := false
	if f := cmd.Flags().Lookup("config"); f != nil {
		path = f.Value.String()
		explicit = f.Changed
	}

	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			if explicit {
				return nil, fmt.Errorf("config file %s: %w: %w", path, err, csvingest.ErrInvalidConfig)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return cfg, nil
}
