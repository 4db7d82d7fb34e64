package cli

import (
	"github.com/vvka-141/csvingest/internal/config"
	"github.com/vvka-141/csvingest/internal/db"
	"github.com/vvka-141/csvingest/pkg/csvingest"
)

// resolveConnection turns the connection flags, the environment and the
// config file into a single connection config.
func resolveConnection(flags *connectionFlags, fileCfg *config.FileConfig) (*csvingest.ConnectionConfig, error) {
	granularFlags := &db.GranularConnFlags{
		Driver:   flags.driver,
		Host:     flags.host,
		Port:     flags.port,
		Username: flags.username,
		Password: flags.password,
		Database: flags.database,
		SSLMode:  flags.sslMode,
	}

	cloudFlags := &db.CloudFlags{
		AuthMethod:     flags.auth,
		AWSRegion:      flags.awsRegion,
		GoogleInstance: flags.googleInstance,
		AzureTenantID:  flags.azureTenantID,
		AzureClientID:  flags.azureClientID,
	}

	return db.ResolveConnectionParams(
		flags.connection,
		granularFlags,
		cloudFlags,
		db.LoadFromEnvironment(),
		fileCfg,
	)
}

// logConnectionVerbose logs connection details. The password is never logged.
func logConnectionVerbose(logger csvingest.Logger, connConfig *csvingest.ConnectionConfig) {
	logger.Verbose("Connection resolved:")
	logger.Verbose("  Driver: %s", connConfig.Driver)
	if connConfig.Driver != csvingest.DriverSQLite {
		logger.Verbose("  Host: %s", connConfig.Host)
		logger.Verbose("  Port: %d", connConfig.Port)
		logger.Verbose("  User: %s", connConfig.Username)
	}
	logger.Verbose("  Database: %s", connConfig.Database)
	if connConfig.SSLMode != "" {
		logger.Verbose("  SSL Mode: %s", connConfig.SSLMode)
	}
	logger.Verbose("  Auth Method: %s", connConfig.AuthMethod)
}
