package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RowDeletion describes a pending deletion of every seat in one row of an
// auditorium.  It is stored between the first and the second confirmation.
type RowDeletion struct {
	AuditoriumID uint64    `json:"auditoriumId"`
	Row          string    `json:"row"`
	SeatIDs      []uint64  `json:"seatIds"`
	RequestedBy  string    `json:"requestedBy"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ConfirmationRepo stores destructive actions awaiting a second
// confirmation.  A token can be consumed exactly once.
type ConfirmationRepo struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewConfirmationRepo returns a ConfirmationRepo whose tokens live for ttl.
func NewConfirmationRepo(rdb *redis.Client, prefix string, ttl time.Duration) *ConfirmationRepo {
	if prefix == "" {
		prefix = "confirm"
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &ConfirmationRepo{rdb: rdb, prefix: prefix, ttl: ttl}
}

// TTL reports how long a token stays valid.
func (r *ConfirmationRepo) TTL() time.Duration { return r.ttl }

// Put stores a pending row deletion and returns its token.
func (r *ConfirmationRepo) Put(ctx context.Context, del RowDeletion) (string, error) {
	b, err := json.Marshal(del)
	if err != nil {
		return "", err
	}
	token := uuid.NewString()
	if err := r.rdb.Set(ctx, r.prefix+":"+token, b, r.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Take loads and removes the pending deletion for token.
func (r *ConfirmationRepo) Take(ctx context.Context, token string) (RowDeletion, error) {
	b, err := r.rdb.GetDel(ctx, r.prefix+":"+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return RowDeletion{}, ErrConfirmationNotFound
	}
	if err != nil {
		return RowDeletion{}, err
	}
	var del RowDeletion
	if err := json.Unmarshal(b, &del); err != nil {
		return RowDeletion{}, err
	}
	return del, nil
}
