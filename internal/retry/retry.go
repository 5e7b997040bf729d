// Package retry provides the bounded fixed-delay retry used around
// single transport operations. No backoff: the delay between attempts
// is constant.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Do runs op up to attempts times, waiting delay between failures. It
// returns nil on the first success, the last error (wrapped with the
// attempt count) once the bound is exhausted, or the context error if
// cancelled while waiting.
func Do(ctx context.Context, attempts int, delay time.Duration, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var last error
	for i := 1; i <= attempts; i++ {
		if last = op(); last == nil {
			return nil
		}
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry aborted after %d of %d attempts: %w", i, attempts, ctx.Err())
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, last)
}
