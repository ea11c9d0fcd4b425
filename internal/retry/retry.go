// Package retry wraps upstream network calls with a bounded, classified retry
// policy: transient failures are retried with capped exponential backoff and
// jitter; permanent failures (bad credentials, rejected input) fail fast.
// Retrying a 401 cannot fix it, so auth errors must be classified permanent
// by the caller's IsPermanent hook.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

// Policy bounds a retried operation.
type Policy struct {
	// MaxAttempts is the total number of invocations, first try included.
	// Values < 1 are coerced to 1.
	MaxAttempts int

	// InitialInterval seeds the exponential backoff (default 200ms).
	InitialInterval time.Duration

	// MaxInterval caps the backoff between attempts (default 2s).
	MaxInterval time.Duration

	// IsPermanent classifies errors that must not be retried. Nil means
	// every error is treated as transient.
	IsPermanent func(error) bool

	// Op names the operation in retry logs.
	Op string
}

// Do invokes op until it succeeds, a permanent error occurs, the context is
// cancelled, or MaxAttempts invocations have failed. The last observed error
// is returned.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	bo := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		bo.InitialInterval = p.InitialInterval
	} else {
		bo.InitialInterval = 200 * time.Millisecond
	}
	if p.MaxInterval > 0 {
		bo.MaxInterval = p.MaxInterval
	} else {
		bo.MaxInterval = 2 * time.Second
	}
	// RandomizationFactor keeps its default so concurrent callers spread out
	// instead of hammering the upstream in lockstep.

	wrapped := func() (T, error) {
		v, err := op(ctx)
		if err != nil && p.IsPermanent != nil && p.IsPermanent(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	return backoff.Retry(ctx, wrapped,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn().
				Str("op", p.Op).
				Dur("next_attempt_in", next).
				Err(err).
				Msg("upstream call failed; retrying")
		}),
	)
}
