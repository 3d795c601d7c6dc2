package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when it still holds our token, so an
// expired lock that another instance re-acquired is left alone.
var releaseScript = redis.NewScript(`
    if redis.call('GET', KEYS[1]) == ARGV[1] then
        return redis.call('DEL', KEYS[1])
    end
    return 0
`)

// LockRepo hands out short-lived exclusive locks backed by Redis SET NX.
type LockRepo struct {
	rdb    *redis.Client
	prefix string
}

// NewLockRepo returns a LockRepo storing keys under prefix.
func NewLockRepo(rdb *redis.Client, prefix string) *LockRepo {
	if prefix == "" {
		prefix = "lock"
	}
	return &LockRepo{rdb: rdb, prefix: prefix}
}

// Acquire tries to take the lock for name.  It returns the token needed to
// release it, or ok=false when somebody else holds the lock.
func (r *LockRepo) Acquire(ctx context.Context, name string, ttl time.Duration) (token string, ok bool, err error) {
	token = uuid.NewString()
	ok, err = r.rdb.SetNX(ctx, r.prefix+":"+name, token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// Release frees the lock if token still owns it.
func (r *LockRepo) Release(ctx context.Context, name, token string) error {
	return releaseScript.Run(ctx, r.rdb, []string{r.prefix + ":" + name}, token).Err()
}
