package helpers

import (
	"context"
	"fmt"
	"time"
)

// Retry runs op up to maxAttempts times, sleeping delay between attempts.
// It returns nil as soon as op succeeds, the last error once attempts are
// exhausted, or the context error if the context is cancelled while waiting.
func Retry(ctx context.Context, maxAttempts int, delay time.Duration, op func() error) error {
	if maxAttempts < 1 {
		return fmt.Errorf("maxAttempts must be positive, got %d", maxAttempts)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}

		if attempt == maxAttempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", maxAttempts, lastErr)
}
