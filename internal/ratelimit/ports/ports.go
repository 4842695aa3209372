// Package ports declares the limiter's backing-store interface.
package ports

import (
	"context"
	"time"
)

// CooldownStore implements the atomic check-and-consume primitive. Acquire
// must be atomic against its backend: two concurrent calls for the same key
// and maxRequests=1 must never both succeed.
type CooldownStore interface {
	// Acquire consumes one request slot under key. It reports whether the
	// request is allowed and, when rejected, how long until the window
	// expires.
	Acquire(ctx context.Context, key string, window time.Duration, maxRequests int) (allowed bool, retryAfter time.Duration, err error)
}
