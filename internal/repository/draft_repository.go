package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-checkout/internal/draft"
)

// DraftRepo keeps drafts in Redis as JSON documents.  Every save refreshes
// the TTL, so a draft that is left alone simply expires; nothing is sent to
// the backend when that happens.
type DraftRepo struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewDraftRepo returns a DraftRepo storing keys under prefix with the given TTL.
func NewDraftRepo(rdb *redis.Client, prefix string, ttl time.Duration) *DraftRepo {
	if prefix == "" {
		prefix = "draft"
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &DraftRepo{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (r *DraftRepo) key(id string) string { return r.prefix + ":" + id }

// Save writes d and resets its expiry.
func (r *DraftRepo) Save(ctx context.Context, d *draft.Draft) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.key(d.ID), b, r.ttl).Err()
}

// Get loads a draft.  ErrDraftNotFound is returned when it does not exist.
func (r *DraftRepo) Get(ctx context.Context, id string) (*draft.Draft, error) {
	b, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}
	var d draft.Draft
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetOwned loads a draft and checks that it belongs to userID.
func (r *DraftRepo) GetOwned(ctx context.Context, id, userID string) (*draft.Draft, error) {
	d, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.UserID != userID {
		return nil, ErrForbidden
	}
	return d, nil
}

// Delete removes a draft.  Deleting a missing draft is not an error.
func (r *DraftRepo) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, r.key(id)).Err()
}
