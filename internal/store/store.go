package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("store: key not found")

// Store is the contract over the TTL key-value store backing conversation
// history, user profiles and the feedback archive. Every operation is
// per-key atomic; there are no cross-key transactions. Writes that must
// outlive a single call perform write-then-expire as two operations, so a
// crash between them can leave a key without a TTL until the next write.
type Store interface {
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key, value string, ttl time.Duration) error

	PushList(ctx context.Context, key, value string) error
	TrimList(ctx context.Context, key string, start, stop int64) error
	RangeList(ctx context.Context, key string, start, stop int64) ([]string, error)

	SetHash(ctx context.Context, key string, fields map[string]string) error
	GetHash(ctx context.Context, key string) (map[string]string, error)

	Expire(ctx context.Context, key string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Increment(ctx context.Context, key string, delta int64) (int64, error)

	HealthCheck(ctx context.Context) error
}
