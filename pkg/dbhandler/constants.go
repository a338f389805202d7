package dbhandler

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Command completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or credentials
	ExitConnectionError = 11 // Failed to connect to database
	ExitQueryFailed     = 13 // Every query attempt failed (strict mode only)
)

const (
	// DefaultMaxTries is the number of attempts a query gets when the caller
	// does not supply a budget.
	DefaultMaxTries = 5

	// DefaultRetryInitialDelay is the first delay used when exponential backoff is enabled.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay caps the delay between attempts when exponential backoff is enabled.
	DefaultRetryMaxDelay = 5 * time.Second

	// DefaultPostgresPort is used when the access information carries no port.
	DefaultPostgresPort = 5432

	// DefaultAccessInformationFile is the credentials document looked up in the
	// user's home directory when no path is given.
	DefaultAccessInformationFile = "access_information.json"

	// DefaultTimezone is the zone used by the date dimension generator.
	DefaultTimezone = "utc"

	// DefaultDateFrequency is the step used by the date dimension generator.
	DefaultDateFrequency = "Min"
)

// Driver names understood by the driver factory.
const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite3"
)
