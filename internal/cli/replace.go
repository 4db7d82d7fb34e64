package cli

import (
	"github.com/spf13/cobra"

	"github.com/vvka-141/csvingest/internal/config"
	"github.com/vvka-141/csvingest/pkg/csvingest"
)

var replaceCmd = &cobra.Command{
	Use:     "replace",
	Aliases: []string{"small", "zones"},
	Short:   "Load a small table wholesale, replacing any existing table",
	Long: `Replace decodes the whole source into memory, then drops the target table
if it exists, recreates it with the decoded columns and inserts every row.

Use it for lookup tables small enough to hold in memory. Running it twice
leaves the same table both times.

Examples:
  # Taxi zone lookup into the default PostgreSQL database
  csvingest replace

  # A local file into SQLite
  csvingest replace --db-driver sqlite --db-name ny_taxi.db \
    --source-url ./taxi_zone_lookup.csv --target-table zones

  # Override a column type
  csvingest replace --column LocationID:text`,
	Args: cobra.NoArgs,
	RunE: runReplace,
}

var replaceFlags loadFlagValues

func init() {
	rootCmd.AddCommand(replaceCmd)
	registerSourceFlags(replaceCmd, &replaceFlags.source, config.DatasetZones)
	registerConnectionFlags(replaceCmd, &replaceFlags.conn)
}

func runReplace(cmd *cobra.Command, args []string) error {
	return runLoad(cmd, csvingest.ModeReplace, &replaceFlags, config.DatasetZones)
}
