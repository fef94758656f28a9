package repository

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// LockRepository implements the registration lock on top of atomic counters.
// The store offers no real mutex; increment-and-check is the whole trick.
// Only one caller can ever observe a post-increment value of exactly 1.
type LockRepository struct {
	rdb *redis.Client
}

func NewLockRepository(rdb *redis.Client) *LockRepository {
	return &LockRepository{rdb: rdb}
}

func lockKey(value string) string { return "lock:" + value }

// Acquire increments the counter for value and returns the post-increment
// count. A result greater than 1 means another registration is in flight
// for the same value.
func (r *LockRepository) Acquire(ctx context.Context, value string) (int64, error) {
	return r.rdb.Incr(ctx, lockKey(value)).Result()
}

// Release deletes the counter entries for the exact values used, making the
// values claimable again. Called unconditionally on every exit path.
func (r *LockRepository) Release(ctx context.Context, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	keys := make([]string, len(values))
	for i, v := range values {
		keys[i] = lockKey(v)
	}
	return r.rdb.Del(ctx, keys...).Err()
}

// IsLocked reports whether a lock entry currently exists for value.
func (r *LockRepository) IsLocked(ctx context.Context, value string) (bool, error) {
	n, err := r.rdb.Exists(ctx, lockKey(value)).Result()
	return n > 0, err
}
