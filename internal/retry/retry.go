// Package retry runs an operation with a bounded number of attempts.
//
// DESIGN: One helper for every outbound call site that retries. The delay
// between attempts comes from a DelayFunc (Linear by default) plugged into
// cenkalti/backoff as a custom BackOff, so the attempt cap, context
// cancellation, and permanent-error handling come from the library.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// DelayFunc returns the wait before the next attempt. attempt is 1 after the
// first failure, 2 after the second, and so on.
type DelayFunc func(attempt int) time.Duration

// Linear waits attempt × base between attempts.
func Linear(base time.Duration) DelayFunc {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * base
	}
}

// Policy bounds a retried operation.
type Policy struct {
	MaxAttempts int
	Delay       DelayFunc
}

// LinearPolicy is the policy used by the assistant client.
func LinearPolicy(maxAttempts int, base time.Duration) Policy {
	return Policy{MaxAttempts: maxAttempts, Delay: Linear(base)}
}

// Permanent marks err as not worth retrying. Do returns the unwrapped err.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// schedule adapts a DelayFunc to backoff.BackOff.
type schedule struct {
	delay   DelayFunc
	attempt int
}

func (s *schedule) NextBackOff() time.Duration {
	s.attempt++
	return s.delay(s.attempt)
}

func (s *schedule) Reset() { s.attempt = 0 }

// Do calls op until it succeeds, returns a Permanent error, the context is
// done, or MaxAttempts is reached. The last error is returned.
// name is only used for logging.
func Do(ctx context.Context, name string, p Policy, op func(ctx context.Context) error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Delay == nil {
		p.Delay = Linear(0)
	}

	var b backoff.BackOff = &schedule{delay: p.Delay}
	b = backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1))
	b = backoff.WithContext(b, ctx)

	attempt := 0
	operation := func() error {
		attempt++
		return op(ctx)
	}
	notify := func(err error, wait time.Duration) {
		log.Debug().
			Err(err).
			Str("op", name).
			Int("attempt", attempt).
			Int("max_attempts", p.MaxAttempts).
			Dur("wait", wait).
			Msg("retrying")
	}

	err := backoff.RetryNotify(operation, b, notify)
	if err != nil && attempt > 1 && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Str("op", name).Int("attempts", attempt).Msg("retries exhausted")
	}
	return err
}
