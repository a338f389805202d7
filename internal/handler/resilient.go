package handler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

// Operation is a unit of work run by Resilient. It reports its own outcome;
// Resilient fills in CallID and Operation.
type Operation[T any] func(ctx context.Context) (T, dbhandler.Outcome)

type callIDKey struct{}

// CallID returns the call ID Resilient attached to ctx, or uuid.Nil.
func CallID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(callIDKey{}).(uuid.UUID)
	return id
}

// Resilient reconnects h, then runs op. It never returns an error and never
// panics: a failed reconnect, a failed outcome or a recovered panic is logged
// and reported through the returned Outcome. On reconnect failure or panic the
// value is the zero T; otherwise it is whatever op returned.
func Resilient[T any](ctx context.Context, h *Handler, name string, op Operation[T]) (result T, outcome dbhandler.Outcome) {
	callID := uuid.New()
	outcome = dbhandler.Outcome{CallID: callID, Operation: name}

	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			outcome = dbhandler.Outcome{
				CallID:    callID,
				Operation: name,
				Err:       fmt.Errorf("%w: %v", dbhandler.ErrOperationPanicked, r),
			}
			h.logger.Error("%s [%s]: %v", name, callID, outcome.Err)
		}
	}()

	if err := h.Reconnect(ctx); err != nil {
		outcome.Err = err
		h.logger.Error("%s [%s]: reconnect failed: %v", name, callID, err)
		return result, outcome
	}

	var inner dbhandler.Outcome
	result, inner = op(context.WithValue(ctx, callIDKey{}, callID))

	outcome.Succeeded = inner.Succeeded
	outcome.Attempts = inner.Attempts
	outcome.Err = inner.Err
	if outcome.Failed() {
		h.logger.Error("%s [%s]: failed after %d attempt(s): %v", name, callID, outcome.Attempts, outcome.Err)
	} else {
		h.logger.Verbose("%s [%s]: succeeded after %d attempt(s)", name, callID, outcome.Attempts)
	}
	return result, outcome
}
