package db

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

// TokenProvider abstracts cloud token acquisition for database authentication.
// The token is used as the PostgreSQL password for one connection.
type TokenProvider interface {
	// GetToken acquires a short-lived token and reports when it expires.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String returns a description for logging. Must not include secrets.
	String() string
}

// AzurePostgreSQLScope is the OAuth scope for Azure Database for PostgreSQL.
const AzurePostgreSQLScope = "https://ossrdbms-aad.database.windows.net/.default"

// tokenExpiryWarning is the remaining lifetime below which a freshly acquired token is reported.
const tokenExpiryWarning = 5 * time.Minute

// NewTokenProvider returns the provider matching access.AuthMethod.
// Azure uses Service Principal credentials when all three are present and the
// DefaultAzureCredential chain otherwise.
func NewTokenProvider(access dbhandler.AccessInformation) (TokenProvider, error) {
	switch access.AuthMethod {
	case dbhandler.AuthMethodAWSIAM:
		port := access.Port
		if port == 0 {
			port = dbhandler.DefaultPostgresPort
		}
		endpoint := fmt.Sprintf("%s:%d", access.Host, port)
		provider, err := NewAWSIAMTokenProvider(endpoint, access.AWSRegion, access.User)
		if err != nil {
			return nil, err
		}
		return provider, nil

	case dbhandler.AuthMethodAzureEntraID:
		if access.AzureTenantID != "" && access.AzureClientID != "" && access.AzureClientSecret != "" {
			provider, err := NewAzureServicePrincipalProvider(access.AzureTenantID, access.AzureClientID, access.AzureClientSecret)
			if err != nil {
				return nil, err
			}
			return provider, nil
		}
		provider, err := NewAzureDefaultCredentialProvider()
		if err != nil {
			return nil, err
		}
		return provider, nil

	default:
		return nil, fmt.Errorf("no token provider for auth method %v: %w", access.AuthMethod, dbhandler.ErrUnsupportedAuthMethod)
	}
}

// StaticTokenProvider returns a fixed token. Useful for pre-issued tokens and tests.
type StaticTokenProvider struct {
	Token     string
	ExpiresOn time.Time
	Err       error
}

func (p *StaticTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	if p.Err != nil {
		return "", time.Time{}, p.Err
	}
	return p.Token, p.ExpiresOn, nil
}

func (p *StaticTokenProvider) String() string {
	return "StaticTokenProvider"
}
