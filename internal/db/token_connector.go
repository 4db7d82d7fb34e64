package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/csvingest/pkg/csvingest"
)

// tokenExpiryWarning is the remaining lifetime under which a fresh token is
// reported: a long append may outlive it.
const tokenExpiryWarning = 5 * time.Minute

// TokenBasedConnector connects to cloud-hosted PostgreSQL (AWS IAM, Azure
// Entra ID) using a short-lived token from a TokenProvider as the password.
type TokenBasedConnector struct {
	config        *csvingest.ConnectionConfig
	tokenProvider TokenProvider
	providerName  string
	logger        csvingest.Logger
}

// NewTokenBasedConnector creates a connector that uses a TokenProvider for authentication.
// providerName is used in error and warning messages (e.g., "AWS IAM", "Azure").
func NewTokenBasedConnector(config *csvingest.ConnectionConfig, tokenProvider TokenProvider, providerName string, logger csvingest.Logger) *TokenBasedConnector {
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		providerName:  providerName,
		logger:        logger,
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	token, expiresOn, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire %s token: %w: %w", c.providerName, err, csvingest.ErrConnectionFailed)
	}

	if c.logger != nil {
		c.logger.Verbose("Acquired %s token from %s", c.providerName, c.tokenProvider)
		if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
			c.logger.Warn("%s token expires in %v", c.providerName, remaining.Round(time.Second))
		}
	}

	configWithToken := *c.config
	configWithToken.Password = token

	poolConfig, err := pgxpool.ParseConfig(BuildConnectionString(&configWithToken))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w: %w", err, csvingest.ErrInvalidConfig)
	}
	return openPool(ctx, poolConfig, c.config)
}
