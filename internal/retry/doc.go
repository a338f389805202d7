// Package retry provides the bounded attempt loop used by query operations.
//
// An Executor makes at most maxTries attempts of an operation and stops at the
// first success. It never sleeps between attempts unless a backoff strategy is
// configured, and it only stops early on a fatal error when a classifier is
// configured. With neither option every failure is retried.
//
// # Example Usage
//
//	executor := retry.NewExecutor(5,
//	    retry.WithBackoff(retry.NewExponentialBackoff(0, 0)),
//	    retry.WithClassifier(retry.NewTransientClassifier()),
//	).WithOnFailure(func(attempt int, err error, delay time.Duration) {
//	    logger.Error("attempt %d failed: %v", attempt, err)
//	})
//
//	result := executor.Execute(ctx, func(ctx context.Context, attempt int) error {
//	    return runQuery(ctx)
//	})
//
// # Error Classification
//
// TransientClassifier recognizes PostgreSQL connection and resource errors,
// SQLite busy/locked errors, and network failures as transient.
//
// # Thread Safety
//
// Executor instances are immutable and safe for concurrent use. Use
// WithOnFailure() to create independent configurations per caller.
package retry
