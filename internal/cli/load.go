package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/csvingest/internal/config"
	"github.com/vvka-141/csvingest/internal/csvdecode"
	"github.com/vvka-141/csvingest/internal/destination"
	"github.com/vvka-141/csvingest/internal/logging"
	"github.com/vvka-141/csvingest/internal/services"
	"github.com/vvka-141/csvingest/internal/tui"
	"github.com/vvka-141/csvingest/pkg/csvingest"
)

// loadFlagValues holds the flags of one load command.
type loadFlagValues struct {
	conn      connectionFlags
	source    sourceFlags
	batchSize int
	recreate  bool
}

// buildLoadRequest resolves the load request from flags and the config file.
// This function is extracted for testability and separation of concerns.
func buildLoadRequest(
	cmd *cobra.Command,
	mode csvingest.LoadMode,
	flags *loadFlagValues,
	fileCfg *config.FileConfig,
	defaultDataset string,
) (csvingest.LoadRequest, error) {
	req, ds, err := resolveSource(&flags.source, fileCfg, defaultDataset)
	if err != nil {
		return csvingest.LoadRequest{}, err
	}

	if mode == csvingest.ModeAppend {
		req.BatchSize = flags.batchSize
		// Apply the dataset's batch size if --batch-size wasn't explicitly set
		if !cmd.Flags().Changed("batch-size") && ds.BatchSize > 0 {
			req.BatchSize = ds.BatchSize
		}
		req.Recreate = flags.recreate
	}

	if err := req.Validate(mode); err != nil {
		return csvingest.LoadRequest{}, err
	}
	return req, nil
}

// runLoad wires configuration, connection, decoder and destination into one
// load and runs it until completion, failure or interrupt.
func runLoad(cmd *cobra.Command, mode csvingest.LoadMode, flags *loadFlagValues, defaultDataset string) error {
	verbose := getVerboseFlag(cmd)

	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}

	req, err := buildLoadRequest(cmd, mode, flags, fileCfg, defaultDataset)
	if err != nil {
		return err
	}

	connConfig, err := resolveConnection(&flags.conn, fileCfg)
	if err != nil {
		return err
	}

	// Interrupt signals (Ctrl+C, SIGTERM) stop the load between batches
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reporter := tui.NewReporter(logging.NewConsoleLogger(verbose), tui.IsInteractive(), stop)
	logger := reporter.Logger()

	if verbose {
		logConnectionVerbose(logger, connConfig)
		logger.Verbose("Source: %s", req.Source)
		logger.Verbose("Target table: %s", req.Table)
		logger.Verbose("Declared columns: %v", req.Schema)
	}

	dest, err := destination.Open(ctx, connConfig, logger)
	if err != nil {
		return err
	}
	defer dest.Close()

	ingester := services.NewIngester(csvdecode.New(), dest, logger, reporter)

	var result *csvingest.LoadResult
	if mode == csvingest.ModeReplace {
		result, err = ingester.LoadReplace(ctx, req)
	} else {
		result, err = ingester.LoadAppend(ctx, req)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) && result != nil {
			return fmt.Errorf("load into %s interrupted, %d rows in %d batches were committed: %w",
				req.Table, result.Rows, result.Batches, err)
		}
		return fmt.Errorf("%s load into %s failed: %w", mode, req.Table, err)
	}

	logger.Verbose("Load %s finished in %v", result.ID, result.Duration.Round(time.Millisecond))
	return nil
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
