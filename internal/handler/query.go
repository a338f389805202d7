package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vvka-141/dbhandler/internal/retry"
	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

// CallOption adjusts a single Fetch or QueryTable call.
type CallOption func(*callSettings)

type callSettings struct {
	maxTries    int
	hasMaxTries bool
}

// WithMaxTries sets the attempt budget for one call. Zero or negative makes no attempts.
func WithMaxTries(n int) CallOption {
	return func(c *callSettings) {
		c.maxTries = n
		c.hasMaxTries = true
	}
}

// Fetch runs q through a fresh cursor and returns every row. All attempts
// reuse the connection opened for this call. On failure it returns an empty
// slice; failures are only visible in the log.
func (h *Handler) Fetch(ctx context.Context, q dbhandler.QuerySpec, opts ...CallOption) []dbhandler.Row {
	rows, _ := h.FetchWithOutcome(ctx, q, opts...)
	return rows
}

// FetchWithOutcome is Fetch plus the Outcome of the call. The rows are never nil.
func (h *Handler) FetchWithOutcome(ctx context.Context, q dbhandler.QuerySpec, opts ...CallOption) ([]dbhandler.Row, dbhandler.Outcome) {
	exec := h.executorFor(opts)
	rows, outcome := Resilient(ctx, h, "fetch", func(ctx context.Context) ([]dbhandler.Row, dbhandler.Outcome) {
		var rows []dbhandler.Row
		res := h.withAttemptLog(ctx, "fetch", exec).Execute(ctx, func(ctx context.Context, attempt int) error {
			var err error
			rows, err = h.fetchOnce(ctx, q)
			return err
		})
		return rows, outcomeOf(res)
	})
	if outcome.Failed() || rows == nil {
		rows = []dbhandler.Row{}
	}
	return rows, outcome
}

// QueryTable materializes q into a Table with the driver's one-shot query.
// Unlike Fetch it returns nil when every attempt fails.
func (h *Handler) QueryTable(ctx context.Context, q dbhandler.QuerySpec, opts ...CallOption) *dbhandler.Table {
	table, _ := h.QueryTableWithOutcome(ctx, q, opts...)
	return table
}

// QueryTableWithOutcome is QueryTable plus the Outcome of the call.
func (h *Handler) QueryTableWithOutcome(ctx context.Context, q dbhandler.QuerySpec, opts ...CallOption) (*dbhandler.Table, dbhandler.Outcome) {
	exec := h.executorFor(opts)
	table, outcome := Resilient(ctx, h, "query_table", func(ctx context.Context) (*dbhandler.Table, dbhandler.Outcome) {
		var table *dbhandler.Table
		res := h.withAttemptLog(ctx, "query_table", exec).Execute(ctx, func(ctx context.Context, attempt int) error {
			var err error
			table, err = h.queryTableOnce(ctx, q)
			return err
		})
		if !res.Succeeded() {
			table = nil
		}
		return table, outcomeOf(res)
	})
	return table, outcome
}

// fetchOnce is one attempt: new cursor, execute, fetch all, close.
// A failed commit on close fails the attempt.
func (h *Handler) fetchOnce(ctx context.Context, q dbhandler.QuerySpec) (rows []dbhandler.Row, err error) {
	cur, err := h.Cursor(ctx)
	if err != nil {
		return nil, asQueryError(err)
	}
	defer func() {
		if cerr := cur.Close(ctx); cerr != nil {
			if err == nil {
				rows, err = nil, fmt.Errorf("close cursor: %w", asQueryError(cerr))
				return
			}
			h.logger.Verbose("Failed to close cursor after error: %v", cerr)
		}
	}()

	if err := cur.Execute(ctx, q); err != nil {
		return nil, asQueryError(err)
	}
	rows, err = cur.FetchAll(ctx)
	if err != nil {
		return nil, asQueryError(err)
	}
	if rows == nil {
		rows = []dbhandler.Row{}
	}
	return rows, nil
}

func (h *Handler) queryTableOnce(ctx context.Context, q dbhandler.QuerySpec) (*dbhandler.Table, error) {
	if h.conn == nil {
		return nil, asQueryError(dbhandler.ErrNotConnected)
	}
	table, err := h.conn.QueryTable(ctx, q)
	if err != nil {
		return nil, asQueryError(err)
	}
	if table == nil {
		table = &dbhandler.Table{}
	}
	return table, nil
}

func (h *Handler) executorFor(opts []CallOption) *retry.Executor {
	var c callSettings
	for _, opt := range opts {
		opt(&c)
	}
	if c.hasMaxTries {
		return h.executor.WithMaxTries(c.maxTries)
	}
	return h.executor
}

func (h *Handler) withAttemptLog(ctx context.Context, name string, exec *retry.Executor) *retry.Executor {
	callID := CallID(ctx)
	maxTries := exec.MaxTries()
	return exec.WithOnFailure(func(attempt int, err error, delay time.Duration) {
		h.logger.Error("%s [%s]: attempt %d/%d failed: %v", name, callID, attempt, maxTries, err)
		if delay > 0 {
			h.logger.Verbose("%s [%s]: retrying in %v", name, callID, delay)
		}
	})
}

func outcomeOf(res retry.Result) dbhandler.Outcome {
	return dbhandler.Outcome{
		Succeeded: res.Succeeded(),
		Attempts:  res.Attempts,
		Err:       res.Err,
	}
}

func asQueryError(err error) error {
	if errors.Is(err, dbhandler.ErrQueryExecution) {
		return err
	}
	return fmt.Errorf("%w: %w", dbhandler.ErrQueryExecution, err)
}
