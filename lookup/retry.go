package lookup

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"
)

// Temporary is implemented by errors that are worth retrying.
type Temporary interface {
	Temporary() bool
}

// IsTransient reports whether err is worth retrying: timeouts, temporary
// network errors, and errors that declare themselves temporary.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var tmp Temporary
	if errors.As(err, &tmp) {
		return tmp.Temporary()
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}

// RetryWithBackoff runs operation until it succeeds, returns a non-transient
// error, or maxAttempts is reached. The delay doubles after each failure.
func RetryWithBackoff(ctx context.Context, operation func(ctx context.Context) error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation(ctx)
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("lookup succeeded after retry", "attempt", attempt)
			}
			return nil
		}

		// The caller gave up; a timeout on the parent context is not ours to retry.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !IsTransient(lastErr) || attempt == maxAttempts {
			break
		}

		slog.Debug("lookup failed, will retry", "attempt", attempt, "maxAttempts", maxAttempts, "err", lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return lastErr
}
