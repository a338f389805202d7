package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

// Result describes how an Execute call ended.
type Result struct {
	// Attempts is the number of times the operation was invoked.
	Attempts int

	// Err is nil on success. Otherwise it wraps dbhandler.ErrExhausted and the
	// last operation error (or the context error if the context ended first).
	Err error
}

// Succeeded reports whether an attempt returned without error.
func (r Result) Succeeded() bool {
	return r.Err == nil
}

// Executor runs an operation up to a fixed number of attempts.
type Executor struct {
	maxTries   int
	strategy   dbhandler.BackoffStrategy
	classifier dbhandler.ErrorClassifier
	onFailure  func(attempt int, err error, delay time.Duration)
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithBackoff sets the delay strategy between attempts. The default is NoBackoff.
func WithBackoff(strategy dbhandler.BackoffStrategy) ExecutorOption {
	return func(e *Executor) {
		if strategy != nil {
			e.strategy = strategy
		}
	}
}

// WithClassifier makes the executor stop as soon as an error is classified as fatal.
func WithClassifier(classifier dbhandler.ErrorClassifier) ExecutorOption {
	return func(e *Executor) {
		e.classifier = classifier
	}
}

// NewExecutor creates an executor that makes at most maxTries attempts.
// maxTries <= 0 makes zero attempts.
func NewExecutor(maxTries int, opts ...ExecutorOption) *Executor {
	e := &Executor{
		maxTries: maxTries,
		strategy: NoBackoff{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithOnFailure returns a new Executor with the specified failure callback.
// The callback receives the 1-based attempt number, its error, and the delay
// that will precede the next attempt (zero after the final attempt).
//
// This method does NOT modify the receiver; it returns a new instance.
func (e *Executor) WithOnFailure(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onFailure = callback
	return &clone
}

// WithMaxTries returns a copy of the executor with a different attempt budget.
func (e *Executor) WithMaxTries(maxTries int) *Executor {
	clone := *e
	clone.maxTries = maxTries
	return &clone
}

// MaxTries returns the attempt budget.
func (e *Executor) MaxTries() int {
	return e.maxTries
}

// Execute runs the operation until it succeeds or the budget is spent.
// The operation receives the 1-based attempt number.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context, attempt int) error) Result {
	var lastErr error
	attempts := 0

	for attempts < e.maxTries {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		attempts++
		lastErr = operation(ctx, attempts)
		if lastErr == nil {
			return Result{Attempts: attempts}
		}

		final := attempts >= e.maxTries
		fatal := e.classifier != nil && !e.classifier.IsTransient(lastErr)

		var delay time.Duration
		if !final && !fatal {
			delay = e.strategy.NextDelay(attempts - 1)
		}

		if e.onFailure != nil {
			e.onFailure(attempts, lastErr, delay)
		}

		if final || fatal {
			break
		}

		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				lastErr = ctx.Err()
				return Result{Attempts: attempts, Err: exhausted(attempts, e.maxTries, lastErr)}
			case <-timer.C:
			}
		}
	}

	return Result{Attempts: attempts, Err: exhausted(attempts, e.maxTries, lastErr)}
}

func exhausted(attempts, maxTries int, lastErr error) error {
	if lastErr == nil {
		return fmt.Errorf("%w: no attempts allowed (max tries %d)", dbhandler.ErrExhausted, maxTries)
	}
	return fmt.Errorf("%w after %d attempt(s): %w", dbhandler.ErrExhausted, attempts, lastErr)
}
