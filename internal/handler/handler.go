package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/vvka-141/dbhandler/internal/logging"
	"github.com/vvka-141/dbhandler/internal/retry"
	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

// Handler owns exactly one live connection and replaces it on Reconnect.
//
// Thread-Safety: not safe for concurrent use. Reconnect mutates the held
// connection in place; callers sharing a Handler must synchronize externally.
type Handler struct {
	driver    dbhandler.Driver
	access    dbhandler.AccessInformation
	logger    dbhandler.Logger
	executor  *retry.Executor
	keepStale bool

	conn  dbhandler.Conn
	stale []dbhandler.Conn
}

// Option configures a Handler.
type Option func(*settings)

type settings struct {
	logger     dbhandler.Logger
	maxTries   int
	backoff    dbhandler.BackoffStrategy
	classifier dbhandler.ErrorClassifier
	keepStale  bool
}

// WithLogger sets the logger for attempt failures and reconnect events.
// The default discards everything.
func WithLogger(logger dbhandler.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefaultMaxTries sets the attempt budget used when a call passes no WithMaxTries.
func WithDefaultMaxTries(n int) Option {
	return func(s *settings) {
		s.maxTries = n
	}
}

// WithBackoff inserts delays between attempts. Without it attempts run back to back.
func WithBackoff(strategy dbhandler.BackoffStrategy) Option {
	return func(s *settings) {
		s.backoff = strategy
	}
}

// WithClassifier stops retrying as soon as an attempt error is classified as fatal.
func WithClassifier(classifier dbhandler.ErrorClassifier) Option {
	return func(s *settings) {
		s.classifier = classifier
	}
}

// WithKeepStaleConnections makes Reconnect drop the previous connection
// without closing it. Dropped connections stay open until Close.
func WithKeepStaleConnections() Option {
	return func(s *settings) {
		s.keepStale = true
	}
}

// New validates access and opens the initial connection.
func New(ctx context.Context, driver dbhandler.Driver, access dbhandler.AccessInformation, opts ...Option) (*Handler, error) {
	if driver == nil {
		return nil, fmt.Errorf("driver is nil: %w", dbhandler.ErrInvalidArgument)
	}
	if err := access.Validate(); err != nil {
		return nil, fmt.Errorf("invalid access information: %w", err)
	}

	s := settings{
		logger:   logging.NewNullLogger(),
		maxTries: dbhandler.DefaultMaxTries,
	}
	for _, opt := range opts {
		opt(&s)
	}

	execOpts := []retry.ExecutorOption{retry.WithBackoff(s.backoff)}
	if s.classifier != nil {
		execOpts = append(execOpts, retry.WithClassifier(s.classifier))
	}

	h := &Handler{
		driver:    driver,
		access:    access,
		logger:    s.logger,
		executor:  retry.NewExecutor(s.maxTries, execOpts...),
		keepStale: s.keepStale,
	}

	conn, err := h.Open(ctx)
	if err != nil {
		return nil, err
	}
	h.conn = conn
	return h, nil
}

// Open asks the driver for a new connection using the held access information.
// It does not touch the held connection and does not retry.
func (h *Handler) Open(ctx context.Context) (dbhandler.Conn, error) {
	conn, err := h.driver.Open(ctx, h.access)
	if err != nil {
		if errors.Is(err, dbhandler.ErrConnectionFailed) || errors.Is(err, dbhandler.ErrInvalidConfig) {
			return nil, err
		}
		return nil, fmt.Errorf("open %s connection to %s: %w: %w", h.driver.Name(), h.access, dbhandler.ErrConnectionFailed, err)
	}
	h.logger.Verbose("Opened %s connection to %s", h.driver.Name(), h.access)
	return conn, nil
}

// Reconnect opens a new connection and replaces the held one, even when the
// held one is healthy. The previous connection is closed afterwards unless
// WithKeepStaleConnections was given. When opening fails the handler is left
// disconnected and the error is returned.
func (h *Handler) Reconnect(ctx context.Context) error {
	previous := h.conn
	conn, err := h.Open(ctx)
	h.conn = conn
	if previous != nil {
		h.release(ctx, previous)
	}
	return err
}

func (h *Handler) release(ctx context.Context, conn dbhandler.Conn) {
	if h.keepStale {
		h.stale = append(h.stale, conn)
		return
	}
	if err := conn.Close(ctx); err != nil {
		h.logger.Error("Failed to close replaced connection: %v", err)
	}
}

// Close closes the held connection and any stale ones. The handler is
// disconnected until the next Reconnect.
func (h *Handler) Close(ctx context.Context) error {
	var errs []error
	if h.conn != nil {
		errs = append(errs, h.conn.Close(ctx))
		h.conn = nil
	}
	for _, conn := range h.stale {
		errs = append(errs, conn.Close(ctx))
	}
	h.stale = nil
	return errors.Join(errs...)
}

// Cursor returns a new column-keyed cursor on the held connection.
func (h *Handler) Cursor(ctx context.Context) (dbhandler.Cursor, error) {
	if h.conn == nil {
		return nil, dbhandler.ErrNotConnected
	}
	return h.conn.Cursor(ctx)
}

// Connected reports whether a connection is held.
func (h *Handler) Connected() bool {
	return h.conn != nil
}

// Conn returns the held connection, or nil when disconnected.
func (h *Handler) Conn() dbhandler.Conn {
	return h.conn
}

// Access returns a copy of the access information the handler connects with.
func (h *Handler) Access() dbhandler.AccessInformation {
	return h.access
}
