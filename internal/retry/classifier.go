package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// SQLSTATE classes that are always worth another attempt: connection
// exception, insufficient resources, operator intervention.
var transientPgClasses = []string{"08", "53", "57"}

// Individual SQLSTATEs outside those classes.
var transientPgCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
}

var transientErrnos = []syscall.Errno{
	syscall.ECONNREFUSED,
	syscall.ECONNRESET,
	syscall.ENETUNREACH,
	syscall.EHOSTUNREACH,
}

// Lowercase fragments of driver messages that carry no typed error.
var transientMessages = []string{
	"connection refused",
	"connection reset",
	"connection timeout",
	"connection failure",
	"network is unreachable",
	"i/o timeout",
	"broken pipe",
	"too many connections",
	"server closed the connection",
	"unexpected eof",
	"conn closed",
	"database is locked",
}

// TransientClassifier implements dbhandler.ErrorClassifier for the errors the
// supported drivers (pgx, go-sqlite3) and the network stack produce.
type TransientClassifier struct{}

func NewTransientClassifier() *TransientClassifier {
	return &TransientClassifier{}
}

// IsTransient reports whether another attempt on the same call may succeed.
// Typed driver errors decide on their own; context errors never retry.
func (c *TransientClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgCodeIsTransient(pgErr.Code)
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	return netIsTransient(err) || messageIsTransient(err.Error())
}

func pgCodeIsTransient(code string) bool {
	if transientPgCodes[code] {
		return true
	}
	for _, class := range transientPgClasses {
		if strings.HasPrefix(code, class) {
			return true
		}
	}
	return false
}

func netIsTransient(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() || dnsErr.Timeout()
	}

	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	if opErr.Temporary() || opErr.Timeout() {
		return true
	}
	for _, errno := range transientErrnos {
		if errors.Is(opErr.Err, errno) {
			return true
		}
	}
	return false
}

func messageIsTransient(msg string) bool {
	msg = strings.ToLower(msg)
	for _, fragment := range transientMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
