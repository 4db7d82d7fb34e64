package db

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/csvingest/pkg/csvingest"
)

// A load owns exactly one connection: every pull and write is sequential.
const (
	DefaultMaxConns        = 1
	DefaultMaxConnIdleTime = 30 * time.Minute
)

func configurePool(poolConfig *pgxpool.Config) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = 0
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
}

// openPool creates the pool and pings it. Failures wrap ErrConnectionFailed.
func openPool(ctx context.Context, poolConfig *pgxpool.Config, cfg *csvingest.ConnectionConfig) (*pgxpool.Pool, error) {
	configurePool(poolConfig)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapConnectionError(err, cfg.Host, cfg.Port, cfg.Database)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, cfg.Host, cfg.Port, cfg.Database)
	}
	return pool, nil
}

// StandardConnector connects with username and password. It does not retry.
type StandardConnector struct {
	config *csvingest.ConnectionConfig
}

// NewStandardConnector creates a new StandardConnector with the given configuration.
func NewStandardConnector(config *csvingest.ConnectionConfig) *StandardConnector {
	return &StandardConnector{config: config}
}

// Connect establishes a single-connection pool using standard authentication.
func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(BuildConnectionString(c.config))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w: %w", err, csvingest.ErrInvalidConfig)
	}
	return openPool(ctx, poolConfig, c.config)
}

// NewConnector creates the Connector matching the config's AuthMethod.
// logger receives token expiry warnings; nil discards them.
func NewConnector(config *csvingest.ConnectionConfig, logger csvingest.Logger) (csvingest.Connector, error) {
	if config.Driver != csvingest.DriverPostgres {
		return nil, fmt.Errorf("connector for driver %s: %w", config.Driver, csvingest.ErrUnsupportedDriver)
	}

	switch config.AuthMethod {
	case csvingest.AuthMethodStandard:
		return NewStandardConnector(config), nil
	case csvingest.AuthMethodAWSIAM:
		return newAWSConnector(config, logger)
	case csvingest.AuthMethodGoogleIAM:
		return newGoogleConnector(config)
	case csvingest.AuthMethodAzureEntraID:
		return newAzureConnector(config, logger)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, csvingest.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError adds actionable guidance to raw pgx connection errors.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - The docker-compose stack is not up
  - Wrong host or port

Original error: %w: %w`, addr, host, port, err, csvingest.ErrConnectionFailed)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - The host is a docker network alias used from outside that network

Original error: %w: %w`, host, err, csvingest.ErrConnectionFailed)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password (check --db-pass, $PGPASSWORD or ~/.pgpass)
  - Wrong username

Original error: %w: %w`, database, err, csvingest.ErrConnectionFailed)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist

To create it:
  createdb %s

Original error: %w: %w`, database, database, err, csvingest.ErrConnectionFailed)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets
  - Wrong host/port (server not listening)

Original error: %w: %w`, addr, err, csvingest.ErrConnectionFailed)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`SSL/TLS connection error

Possible causes:
  - Server requires SSL but --sslmode is wrong
  - Certificate verification failed (try --sslmode=require)

Original error: %w: %w`, err, csvingest.ErrConnectionFailed)

	default:
		return fmt.Errorf("failed to connect to database: %w: %w", err, csvingest.ErrConnectionFailed)
	}
}

// newAWSConnector creates a token-based connector with the AWS IAM token provider.
func newAWSConnector(config *csvingest.ConnectionConfig, logger csvingest.Logger) (csvingest.Connector, error) {
	endpoint := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))

	tokenProvider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}

	return NewTokenBasedConnector(config, tokenProvider, "AWS IAM", logger), nil
}

// newGoogleConnector validates the Cloud SQL parameters and creates the connector.
func newGoogleConnector(config *csvingest.ConnectionConfig) (csvingest.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", csvingest.ErrInvalidConfig)
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --db-user: %w", csvingest.ErrInvalidConfig)
	}

	return NewGoogleCloudSQLConnector(config), nil
}

// newAzureConnector uses Service Principal auth when tenant, client and secret
// are all present, and the DefaultAzureCredential chain otherwise.
func newAzureConnector(config *csvingest.ConnectionConfig, logger csvingest.Logger) (csvingest.Connector, error) {
	var tokenProvider TokenProvider
	var err error

	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(config.AzureTenantID, config.AzureClientID, config.AzureClientSecret)
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure token provider: %w", err)
	}

	return NewTokenBasedConnector(config, tokenProvider, "Azure", logger), nil
}
