package csvingest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LoadMode selects how a load writes into its destination table.
type LoadMode int

const (
	// ModeReplace decodes the whole source and replaces the table wholesale.
	ModeReplace LoadMode = iota
	// ModeAppend creates the table empty, then appends bounded batches.
	ModeAppend
)

func (m LoadMode) String() string {
	switch m {
	case ModeReplace:
		return "replace"
	case ModeAppend:
		return "append"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// LoadRequest contains all parameters needed for one load.
type LoadRequest struct {
	// Source is a local path or URL readable as delimited text.
	Source string

	// Table is the destination table name, optionally schema-qualified.
	Table string

	// Schema declares the types of known columns.
	Schema Schema

	// BatchSize bounds the rows per appended batch. Only used by ModeAppend.
	BatchSize int

	// Recreate drops an existing table before an append load instead of
	// appending to it. ModeReplace always recreates.
	Recreate bool
}

// Validate checks the request for the given mode.
// It returns a multi-error if multiple validation failures occur.
func (r *LoadRequest) Validate(mode LoadMode) error {
	var errs []error

	if strings.TrimSpace(r.Source) == "" {
		errs = append(errs, fmt.Errorf("source is required: %w", ErrInvalidConfig))
	}
	if strings.TrimSpace(r.Table) == "" {
		errs = append(errs, fmt.Errorf("target table is required: %w", ErrInvalidConfig))
	}
	if err := r.Schema.Validate(); err != nil {
		errs = append(errs, err)
	}
	if mode == ModeAppend && r.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch size must be positive, got %d: %w", r.BatchSize, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// LoadResult summarizes a completed load.
type LoadResult struct {
	ID       uuid.UUID
	Table    string
	Mode     LoadMode
	Columns  []Column
	Rows     int64
	Batches  int
	Duration time.Duration
}

// Driver identifies the destination database engine.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
	DriverSQLite   Driver = "sqlite"
)

// Drivers lists the supported drivers in display order.
var Drivers = []Driver{DriverPostgres, DriverMySQL, DriverSQLite}

// ParseDriver accepts driver names and common aliases.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "postgres", "postgresql", "pg", "pgx":
		return DriverPostgres, nil
	case "mysql", "mariadb":
		return DriverMySQL, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("driver %q: %w", s, ErrUnsupportedDriver)
	}
}

// DefaultPort returns the conventional port for the driver, 0 for file databases.
func (d Driver) DefaultPort() int {
	switch d {
	case DriverMySQL:
		return DefaultMySQLPort
	case DriverSQLite:
		return 0
	default:
		return DefaultPostgresPort
	}
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// ParseAuthMethod maps the --auth flag value to an AuthMethod.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "gcp", "google-iam":
		return AuthMethodGoogleIAM, nil
	case "azure", "entra", "azure-entra-id":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("auth method %q: %w", s, ErrUnsupportedAuthMethod)
	}
}

// ConnectionConfig represents resolved connection parameters.
type ConnectionConfig struct {
	Driver   Driver
	Host     string
	Port     int
	Database string // for sqlite, the database file path
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// Cloud IAM parameters, used by the matching AuthMethod.
	AWSRegion         string
	GoogleInstance    string // project:region:instance
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// Validate checks the connection config for the fields its driver and auth method need.
func (c *ConnectionConfig) Validate() error {
	var errs []error

	if c.Database == "" {
		errs = append(errs, fmt.Errorf("database name is required: %w", ErrInvalidConfig))
	}
	if c.Driver != DriverSQLite && c.AuthMethod != AuthMethodGoogleIAM && c.Host == "" {
		errs = append(errs, fmt.Errorf("database host is required: %w", ErrInvalidConfig))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range: %w", c.Port, ErrInvalidConfig))
	}
	if c.AuthMethod != AuthMethodStandard && c.Driver != DriverPostgres {
		errs = append(errs, fmt.Errorf("%s authentication requires the postgres driver: %w", c.AuthMethod, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}
