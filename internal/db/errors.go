package db

import (
	"fmt"
	"strings"

	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

// wrapConnectionError rewrites raw driver connection errors with actionable guidance.
// The result chains both dbhandler.ErrConnectionFailed and the original error.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	if port == 0 {
		port = dbhandler.DefaultPostgresPort
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	var guidance string
	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		guidance = fmt.Sprintf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port
  - Firewall blocking the connection`, addr, host, port)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		guidance = fmt.Sprintf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled in the credentials document
  - DNS is not configured or reachable
  - Network connection issue`, host)

	case strings.Contains(errStr, "password authentication failed"):
		guidance = fmt.Sprintf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password in the credentials document or $DBHANDLER_PASSWORD
  - Wrong username
  - User does not have access to the database`, database)

	case strings.Contains(errStr, "does not exist"):
		guidance = fmt.Sprintf(`database "%s" does not exist

Check the database field of the selected profile, or create it:
  createdb %s`, database, database)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		guidance = fmt.Sprintf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Network latency or packet loss
  - Firewall silently dropping packets
  - Wrong host/port (server not listening)`, addr)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		guidance = `SSL/TLS connection error

Possible causes:
  - Server requires SSL but the sslmode setting is wrong
  - Certificate verification failed (try sslmode=require)`

	case strings.Contains(errStr, "too many connections"):
		guidance = fmt.Sprintf(`too many connections to database "%s"

Possible causes:
  - max_connections limit reached in postgresql.conf
  - Stale connections kept open by earlier sessions

Try: SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = '%s';`, database, database)

	default:
		return fmt.Errorf("failed to connect to database: %w: %w", dbhandler.ErrConnectionFailed, err)
	}

	return fmt.Errorf("%s\n\nOriginal error: %w: %w", guidance, dbhandler.ErrConnectionFailed, err)
}
