package db

import (
	"context"
	"time"
)

// TokenProvider acquires short-lived database credentials from a cloud identity service.
type TokenProvider interface {
	// GetToken returns a token to use as the PostgreSQL password and its expiry.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String describes the provider for logs. It must not include secrets.
	String() string
}

// AzurePostgreSQLScope is the OAuth scope Azure AD issues PostgreSQL tokens for.
const AzurePostgreSQLScope = "https://ossrdbms-aad.database.windows.net/.default"

// rdsTokenLifetime is how long an RDS IAM auth token stays valid.
const rdsTokenLifetime = 15 * time.Minute
