// Package rotation tracks per-rule round-robin counters. Each rule owns a
// monotonically increasing counter; the index consumed by an assignment is
// counter mod poolSize. Because the counter only ever grows, concurrent
// callers for the same rule receive consecutive, non-repeating indices, and
// a resized pool is clamped naturally by the modulo.
package rotation

import (
	"context"
	"errors"
)

// ErrInvalidPoolSize is returned when poolSize is not positive. Callers are
// expected to guard against empty pools before consulting the store.
var ErrInvalidPoolSize = errors.New("rotation: pool size must be positive")

// Store persists rotation counters keyed by rule id. Advance is an atomic
// read-modify-write; two concurrent Advance calls for the same rule never
// return the same index.
type Store interface {
	// Advance consumes and returns the next index in [0, poolSize).
	Advance(ctx context.Context, ruleID string, poolSize int) (int, error)
	// Peek returns the index Advance would consume, without consuming it.
	Peek(ctx context.Context, ruleID string, poolSize int) (int, error)
}
