package dbhandler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// AccessInformation carries everything a driver needs to open a session.
// Host, User and Password are mandatory for password authentication.
type AccessInformation struct {
	Host     string
	User     string
	Password string

	// Database is optional; drivers fall back to their own default.
	Database string

	// Port is optional; 0 means the driver default.
	Port int

	// SSLMode is passed through to drivers that understand it (PostgreSQL).
	SSLMode string

	// Driver selects the driver implementation (see DriverPostgres, DriverSQLite).
	// Empty means DriverPostgres.
	Driver string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Cloud IAM parameters, used only by the matching AuthMethod.
	AWSRegion         string
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
	GoogleInstance    string
}

// Validate checks that the access information is complete.
// It returns a multi-error if multiple validation failures occur.
func (a AccessInformation) Validate() error {
	var errs []error

	if a.Host == "" && a.GoogleInstance == "" {
		errs = append(errs, fmt.Errorf("host is required: %w", ErrInvalidConfig))
	}
	if a.User == "" {
		errs = append(errs, fmt.Errorf("user is required: %w", ErrInvalidConfig))
	}
	if a.Password == "" && !a.AuthMethod.UsesToken() {
		errs = append(errs, fmt.Errorf("password is required: %w", ErrInvalidConfig))
	}
	if a.Port < 0 || a.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range: %w", a.Port, ErrInvalidConfig))
	}
	if !a.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("auth method %v: %w", a.AuthMethod, ErrUnsupportedAuthMethod))
	}

	return errors.Join(errs...)
}

// DriverName returns the configured driver, defaulting to DriverPostgres.
func (a AccessInformation) DriverName() string {
	if a.Driver == "" {
		return DriverPostgres
	}
	return a.Driver
}

// String describes the target without exposing the password.
func (a AccessInformation) String() string {
	host := a.Host
	if host == "" {
		host = a.GoogleInstance
	}
	if a.Database != "" {
		return fmt.Sprintf("%s@%s/%s", a.User, host, a.Database)
	}
	return fmt.Sprintf("%s@%s", a.User, host)
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

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// UsesToken reports whether the password is obtained from a cloud identity at open time.
func (a AuthMethod) UsesToken() bool {
	return a == AuthMethodAWSIAM || a == AuthMethodGoogleIAM || a == AuthMethodAzureEntraID
}

// ParseAuthMethod maps the names used in credentials documents to an AuthMethod.
// The empty string is AuthMethodStandard.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws_iam", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "google_iam", "google-iam", "gcp":
		return AuthMethodGoogleIAM, nil
	case "azure", "azure_entra_id", "entra", "azure-entra-id":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("%q: %w", s, ErrUnsupportedAuthMethod)
	}
}

// QuerySpec is a query text with its ordered bind values.
type QuerySpec struct {
	Text   string
	Params []any
}

// Query is a convenience constructor for QuerySpec.
func Query(text string, params ...any) QuerySpec {
	return QuerySpec{Text: text, Params: params}
}

// Outcome reports how a resilient call ended.
//
// Callers that only look at returned rows cannot tell an empty result from a
// call whose every attempt failed; Outcome makes that distinction explicit.
type Outcome struct {
	// CallID correlates the outcome with log lines of the same call.
	CallID uuid.UUID

	// Operation is the name the call was registered under (e.g. "fetch").
	Operation string

	// Succeeded is true when an attempt returned without error.
	Succeeded bool

	// Attempts is the number of attempts actually made.
	Attempts int

	// Err is the last error observed, nil on success.
	Err error
}

// Failed is the inverse of Succeeded.
func (o Outcome) Failed() bool {
	return !o.Succeeded
}
