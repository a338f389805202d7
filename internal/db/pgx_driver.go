package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

// PgxDriver opens PostgreSQL sessions with pgx. Each Open returns a single
// *pgx.Conn; there is no pool.
type PgxDriver struct {
	logger        dbhandler.Logger
	tokenProvider TokenProvider
}

// PgxOption configures a PgxDriver.
type PgxOption func(*PgxDriver)

// WithTokenProvider overrides the provider used for token-based auth methods.
// Without it the provider is derived from the access information on every Open.
func WithTokenProvider(p TokenProvider) PgxOption {
	return func(d *PgxDriver) {
		d.tokenProvider = p
	}
}

// NewPgxDriver creates the PostgreSQL driver. Server notices are forwarded to logger.Verbose.
func NewPgxDriver(logger dbhandler.Logger, opts ...PgxOption) *PgxDriver {
	d := &PgxDriver{logger: logger}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *PgxDriver) Name() string { return dbhandler.DriverPostgres }

// Open establishes one session. Token-based auth acquires a fresh token as the
// password; Google IAM dials through the Cloud SQL connector.
func (d *PgxDriver) Open(ctx context.Context, access dbhandler.AccessInformation) (dbhandler.Conn, error) {
	if err := access.Validate(); err != nil {
		return nil, err
	}

	var (
		cfg    *pgx.ConnConfig
		dialer *cloudsqlconn.Dialer
		err    error
	)

	switch access.AuthMethod {
	case dbhandler.AuthMethodGoogleIAM:
		cfg, dialer, err = d.googleConfig(ctx, access)
	case dbhandler.AuthMethodAWSIAM, dbhandler.AuthMethodAzureEntraID:
		cfg, err = d.tokenConfig(ctx, access)
	default:
		cfg, err = pgx.ParseConfig(BuildConnectionString(access))
	}
	if err != nil {
		return nil, err
	}

	cfg.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		d.logger.Verbose("%s: %s", notice.Severity, notice.Message)
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		if dialer != nil {
			dialer.Close()
		}
		return nil, wrapConnectionError(err, access.Host, access.Port, access.Database)
	}

	return &pgxConn{conn: conn, dialer: dialer}, nil
}

func (d *PgxDriver) tokenConfig(ctx context.Context, access dbhandler.AccessInformation) (*pgx.ConnConfig, error) {
	provider := d.tokenProvider
	if provider == nil {
		var err error
		if provider, err = NewTokenProvider(access); err != nil {
			return nil, err
		}
	}

	token, expiresOn, err := provider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire %s token: %w: %w", access.AuthMethod, dbhandler.ErrConnectionFailed, err)
	}
	if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
		d.logger.Info("Warning: %s token expires in %v", access.AuthMethod, remaining.Round(time.Second))
	}
	d.logger.Verbose("Acquired %s token from %s", access.AuthMethod, provider)

	withToken := access
	withToken.Password = token

	cfg, err := pgx.ParseConfig(BuildConnectionString(withToken))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w: %w", dbhandler.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// googleConfig routes the connection through a Cloud SQL dialer using IAM
// authentication. The dialer is owned by the returned connection.
func (d *PgxDriver) googleConfig(ctx context.Context, access dbhandler.AccessInformation) (*pgx.ConnConfig, *cloudsqlconn.Dialer, error) {
	if access.GoogleInstance == "" {
		return nil, nil, fmt.Errorf("Google Cloud SQL IAM auth requires google_instance (project:region:instance): %w", dbhandler.ErrInvalidConfig)
	}

	dsn := fmt.Sprintf("host=%s user=%s dbname=%s sslmode=disable application_name=%s",
		access.GoogleInstance, access.User, access.Database, ApplicationName)
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse connection config: %w: %w", dbhandler.ErrInvalidConfig, err)
	}

	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Cloud SQL dialer: %w: %w", dbhandler.ErrConnectionFailed, err)
	}

	instance := access.GoogleInstance
	cfg.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
		return dialer.Dial(ctx, instance)
	}
	return cfg, dialer, nil
}

type pgxConn struct {
	conn   *pgx.Conn
	dialer *cloudsqlconn.Dialer
}

// Cursor begins a transaction that the cursor commits or rolls back on Close.
func (c *pgxConn) Cursor(ctx context.Context) (dbhandler.Cursor, error) {
	tx, err := c.conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w: %w", dbhandler.ErrQueryExecution, err)
	}
	return &pgxCursor{tx: tx}, nil
}

// QueryTable runs the query directly on the connection and materializes every row.
func (c *pgxConn) QueryTable(ctx context.Context, q dbhandler.QuerySpec) (*dbhandler.Table, error) {
	rows, err := c.conn.Query(ctx, q.Text, q.Params...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dbhandler.ErrQueryExecution, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	table := &dbhandler.Table{Columns: make([]dbhandler.Column, len(fields))}
	for i, fd := range fields {
		table.Columns[i] = dbhandler.Column{Name: fd.Name, Type: c.typeName(fd.DataTypeOID)}
	}

	for rows.Next() {
		raw, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", dbhandler.ErrQueryExecution, err)
		}
		values := make([]dbhandler.Value, len(raw))
		for i, v := range raw {
			values[i] = pgValue(v)
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", dbhandler.ErrQueryExecution, err)
	}

	return table, nil
}

func (c *pgxConn) typeName(oid uint32) string {
	if t, ok := c.conn.TypeMap().TypeForOID(oid); ok {
		return t.Name
	}
	return ""
}

func (c *pgxConn) Close(ctx context.Context) error {
	err := c.conn.Close(ctx)
	if c.dialer != nil {
		err = errors.Join(err, c.dialer.Close())
		c.dialer = nil
	}
	return err
}

type pgxCursor struct {
	tx     pgx.Tx
	rows   pgx.Rows
	failed bool
	closed bool
}

func (c *pgxCursor) Execute(ctx context.Context, q dbhandler.QuerySpec) error {
	if c.closed {
		return fmt.Errorf("cursor is closed: %w", dbhandler.ErrQueryExecution)
	}
	if c.rows != nil {
		c.rows.Close()
		c.rows = nil
	}

	rows, err := c.tx.Query(ctx, q.Text, q.Params...)
	if err != nil {
		c.failed = true
		return fmt.Errorf("%w: %w", dbhandler.ErrQueryExecution, err)
	}
	c.rows = rows
	return nil
}

func (c *pgxCursor) FetchAll(ctx context.Context) ([]dbhandler.Row, error) {
	if c.rows == nil {
		return nil, fmt.Errorf("fetch before execute: %w", dbhandler.ErrQueryExecution)
	}
	rows := c.rows
	c.rows = nil

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		c.failed = true
		return nil, fmt.Errorf("%w: %w", dbhandler.ErrQueryExecution, err)
	}

	out := make([]dbhandler.Row, len(maps))
	for i, m := range maps {
		row := make(dbhandler.Row, len(m))
		for k, v := range m {
			row[k] = pgValue(v)
		}
		out[i] = row
	}
	return out, nil
}

// Close commits when every statement succeeded and rolls back otherwise.
func (c *pgxCursor) Close(ctx context.Context) error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.rows != nil {
		c.rows.Close()
		c.rows = nil
	}
	if c.failed {
		return c.tx.Rollback(ctx)
	}
	return c.tx.Commit(ctx)
}

// pgValue converts pgx-decoded values that NewValue cannot render on its own.
func pgValue(v any) dbhandler.Value {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid {
			return dbhandler.Null
		}
		if !x.NaN && x.InfinityModifier == pgtype.Finite {
			if text, err := x.Value(); err == nil {
				if s, ok := text.(string); ok {
					return dbhandler.DecimalValue(s)
				}
			}
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return dbhandler.Null
		}
		return dbhandler.FloatValue(f.Float64)
	case [16]byte:
		return dbhandler.StringValue(uuid.UUID(x).String())
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return dbhandler.NewValue(v)
		}
		return dbhandler.StringValue(string(b))
	}
	return dbhandler.NewValue(v)
}
