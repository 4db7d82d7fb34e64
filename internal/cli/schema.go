package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/csvingest/internal/config"
	"github.com/vvka-141/csvingest/internal/csvdecode"
	"github.com/vvka-141/csvingest/internal/destination"
	"github.com/vvka-141/csvingest/pkg/csvingest"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the CREATE TABLE statement a load would issue",
	Long: `Schema probes the source for its column set, exactly as an append load does
before creating its table, and prints the resulting CREATE TABLE statement
for the selected driver. No database connection is made.

Columns declared by the dataset or --column keep their type; the others are
inferred from the leading rows of the source.

Examples:
  csvingest schema --dataset yellow
  csvingest schema --source-url ./trips.csv.gz --db-driver sqlite`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

type schemaFlagValues struct {
	source sourceFlags
	driver string
}

var schemaFlags schemaFlagValues

func init() {
	rootCmd.AddCommand(schemaCmd)
	registerSourceFlags(schemaCmd, &schemaFlags.source, config.DatasetYellow)
	schemaCmd.Flags().StringVar(&schemaFlags.driver, "db-driver", "",
		"SQL dialect: postgres|mysql|sqlite (default: csvingest.yaml driver, or postgres)")
	_ = schemaCmd.RegisterFlagCompletionFunc("db-driver", completeDrivers)
}

func runSchema(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}

	req, _, err := resolveSource(&schemaFlags.source, fileCfg, config.DatasetYellow)
	if err != nil {
		return err
	}

	driverName := schemaFlags.driver
	if driverName == "" && fileCfg != nil {
		driverName = fileCfg.Connection.Driver
	}
	driver, err := csvingest.ParseDriver(driverName)
	if err != nil {
		return err
	}
	dialect, err := destination.DialectFor(driver)
	if err != nil {
		return err
	}

	probe, err := csvdecode.New().Probe(commandContext(cmd), req.Source, req.Schema)
	if err != nil {
		return fmt.Errorf("failed to probe %s: %w", req.Source, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s;\n", destination.DDL(dialect, req.Table, probe.Columns))
	return nil
}
