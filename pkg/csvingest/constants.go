package csvingest

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Load completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or flag combination
	ExitConnectionError = 11 // Failed to connect to database
	ExitDecodeError     = 12 // Source unreadable or a value failed type coercion
	ExitWriteError      = 13 // Table creation or row insert failed
)

const (
	// DefaultBatchSize is the number of rows per appended batch in chunked mode.
	DefaultBatchSize = 100000

	// InferenceSampleRows is how many leading data rows are examined to type
	// columns the schema does not declare. It is fixed so that the probed
	// column set does not depend on the batch size.
	InferenceSampleRows = 1000

	// DefaultDatabase is the database of the taxi ingestion setup.
	DefaultDatabase = "ny_taxi"

	// DefaultUser and DefaultPassword match the docker-compose setup the
	// datasets are usually loaded into.
	DefaultUser     = "root"
	DefaultPassword = "root"

	// DefaultHost is the database host used when nothing else is configured.
	DefaultHost = "localhost"

	// DefaultPostgresPort and DefaultMySQLPort are the per-driver default ports.
	DefaultPostgresPort = 5432
	DefaultMySQLPort    = 3306

	// DefaultAppName is reported to PostgreSQL as application_name.
	DefaultAppName = "csvingest"
)
