package retry

import (
	"math/rand"
	"time"

	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

// NoBackoff retries immediately. It is the executor default: attempts run
// back to back on the same connection.
type NoBackoff struct{}

// NextDelay always returns zero.
func (NoBackoff) NextDelay(int) time.Duration { return 0 }

// ConstantBackoff waits the same duration before every retry.
type ConstantBackoff time.Duration

// NextDelay returns the constant delay.
func (c ConstantBackoff) NextDelay(int) time.Duration { return time.Duration(c) }

// ExponentialBackoff doubles the delay after every failed attempt, starting
// at Initial and never exceeding Max. Jitter spreads each delay by up to
// that fraction in either direction.
type ExponentialBackoff struct {
	Initial time.Duration
	Max     time.Duration
	Jitter  float64

	// Rand returns values in [0, 1). Nil uses math/rand.
	Rand func() float64
}

// NewExponentialBackoff returns a doubling backoff between initial and max
// with 10% jitter. Non-positive bounds fall back to the package defaults.
func NewExponentialBackoff(initial, max time.Duration) *ExponentialBackoff {
	if initial <= 0 {
		initial = dbhandler.DefaultRetryInitialDelay
	}
	if max <= 0 {
		max = dbhandler.DefaultRetryMaxDelay
	}
	return &ExponentialBackoff{Initial: initial, Max: max, Jitter: 0.1}
}

// NextDelay returns Initial * 2^attempt capped at Max, then jittered.
func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	delay := b.Initial
	for i := 0; i < attempt && delay < b.Max; i++ {
		delay *= 2
	}
	if delay > b.Max {
		delay = b.Max
	}

	if b.Jitter <= 0 {
		return delay
	}
	random := b.Rand
	if random == nil {
		random = rand.Float64
	}
	// [0,1) maps to a factor in [1-Jitter, 1+Jitter).
	factor := 1 + b.Jitter*(random()*2-1)
	return time.Duration(float64(delay) * factor)
}
