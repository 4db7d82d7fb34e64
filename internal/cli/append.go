package cli

import (
	"github.com/spf13/cobra"

	"github.com/vvka-141/csvingest/internal/config"
	"github.com/vvka-141/csvingest/pkg/csvingest"
)

var appendCmd = &cobra.Command{
	Use:     "append",
	Aliases: []string{"chunked", "trips"},
	Short:   "Stream a large source into a table in bounded batches",
	Long: `Append probes the source for its columns, creates the target table if it
does not exist, then reads the source in batches of at most --batch-size rows
and appends each batch in its own transaction.

Memory stays bounded by the batch size. A decode error stops the load before
the failing batch is written; batches already appended stay committed.
Running it twice appends the rows twice; use --recreate to start from an
empty table.

An existing table keeps its columns. If they differ from the columns read
from the source, every insert fails with a write error (exit code 13) and
nothing is appended; pass --recreate to replace the table with the source's
shape.

Examples:
  # Yellow taxi trips, January 2021
  csvingest append

  # Smaller batches into MySQL
  csvingest append --db-driver mysql --db-port 3306 --batch-size 50000

  # Drop and recreate the table first
  csvingest append --recreate --target-table yellow_taxi_trips`,
	Args: cobra.NoArgs,
	RunE: runAppend,
}

var appendFlags loadFlagValues

func init() {
	rootCmd.AddCommand(appendCmd)
	registerSourceFlags(appendCmd, &appendFlags.source, config.DatasetYellow)
	registerConnectionFlags(appendCmd, &appendFlags.conn)

	appendCmd.Flags().IntVar(&appendFlags.batchSize, "batch-size", csvingest.DefaultBatchSize,
		"Rows per appended batch (default: the dataset's batch size, or 100000)")
	appendCmd.Flags().BoolVar(&appendFlags.recreate, "recreate", false,
		"Drop and recreate the target table before appending")
}

func runAppend(cmd *cobra.Command, args []string) error {
	return runLoad(cmd, csvingest.ModeAppend, &appendFlags, config.DatasetYellow)
}
