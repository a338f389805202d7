// Package testinfra starts throwaway database servers for integration tests.
package testinfra

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// ImageEnv overrides the PostgreSQL image, e.g. to test against an older major.
const ImageEnv = "DBHANDLER_TEST_PG_IMAGE"

const defaultImage = "postgres:17-alpine"

type postgresSettings struct {
	image    string
	database string
	user     string
	password string
	startup  time.Duration
}

// Option adjusts the server StartPostgres launches.
type Option func(*postgresSettings)

// WithDatabase names the database created at startup.
func WithDatabase(name string) Option {
	return func(s *postgresSettings) { s.database = name }
}

// WithStartupTimeout bounds the wait for the server to accept connections.
func WithStartupTimeout(d time.Duration) Option {
	return func(s *postgresSettings) { s.startup = d }
}

func newPostgresSettings(opts []Option) postgresSettings {
	s := postgresSettings{
		image:    defaultImage,
		database: "dbhandler",
		user:     "dbhandler",
		password: "dbhandler",
		startup:  time.Minute,
	}
	if image := os.Getenv(ImageEnv); image != "" {
		s.image = image
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Postgres is a running server and the URL that reaches it without TLS.
type Postgres struct {
	*postgres.PostgresContainer
	ConnString string
}

// StartPostgres launches a PostgreSQL container. The caller owns termination.
func StartPostgres(ctx context.Context, opts ...Option) (*Postgres, error) {
	s := newPostgresSettings(opts)

	// The entrypoint restarts the server once after init, hence two log lines.
	ready := wait.ForLog("database system is ready to accept connections").
		WithOccurrence(2).
		WithStartupTimeout(s.startup)

	ctr, err := postgres.Run(ctx, s.image,
		postgres.WithDatabase(s.database),
		postgres.WithUsername(s.user),
		postgres.WithPassword(s.password),
		testcontainers.WithWaitStrategy(ready),
	)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", s.image, err)
	}

	conn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("connection string for %s: %w", s.image, err)
	}
	return &Postgres{PostgresContainer: ctr, ConnString: conn}, nil
}
