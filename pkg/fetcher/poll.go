package fetcher

import (
	"context"
	"time"
)

// Poll runs check every interval until it reports true, the attempts are
// exhausted, or ctx is cancelled. It returns whether check ever
// succeeded. This is the wait primitive behind "keep watching the page
// until it changes": keeping it separate from the browser keeps the
// wait policy testable.
func Poll(ctx context.Context, interval time.Duration, attempts int, check func() bool) bool {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; i < attempts; i++ {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if check() {
				return true
			}
		}
	}
	return false
}
