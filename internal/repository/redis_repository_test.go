package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-checkout/internal/draft"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestDraftRepoSaveGetDelete(t *testing.T) {
	mr, rdb := newRedis(t)
	repo := NewDraftRepo(rdb, "draft", time.Minute)
	ctx := context.Background()

	d, err := draft.New("42", 3, 8, time.Now())
	require.NoError(t, err)
	require.NoError(t, d.ToggleSeat(5, time.Now()))
	require.NoError(t, repo.Save(ctx, d))
	assert.Equal(t, time.Minute, mr.TTL("draft:"+d.ID))

	got, err := repo.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{5}, got.Seats.IDs())
	assert.Equal(t, d.IdempotencyKey, got.IdempotencyKey)

	_, err = repo.GetOwned(ctx, d.ID, "7")
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, repo.Delete(ctx, d.ID))
	_, err = repo.Get(ctx, d.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
	assert.NoError(t, repo.Delete(ctx, d.ID), "deleting twice is fine")
}

func TestDraftRepoExpires(t *testing.T) {
	mr, rdb := newRedis(t)
	repo := NewDraftRepo(rdb, "draft", time.Minute)
	ctx := context.Background()

	d, err := draft.New("42", 3, 8, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, d))

	mr.FastForward(2 * time.Minute)
	_, err = repo.Get(ctx, d.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestLockRepo(t *testing.T) {
	mr, rdb := newRedis(t)
	locks := NewLockRepo(rdb, "lock")
	ctx := context.Background()

	tok, ok, err := locks.Acquire(ctx, "submit:d1", 10*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locks.Acquire(ctx, "submit:d1", 10*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while held")

	require.NoError(t, locks.Release(ctx, "submit:d1", "someone-else"))
	assert.True(t, mr.Exists("lock:submit:d1"), "foreign token must not release")

	require.NoError(t, locks.Release(ctx, "submit:d1", tok))
	_, ok, err = locks.Acquire(ctx, "submit:d1", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConfirmationRepoSingleUse(t *testing.T) {
	_, rdb := newRedis(t)
	repo := NewConfirmationRepo(rdb, "confirm", time.Minute)
	ctx := context.Background()

	tok, err := repo.Put(ctx, RowDeletion{AuditoriumID: 2, Row: "C", SeatIDs: []uint64{10, 11}, RequestedBy: "1"})
	require.NoError(t, err)

	del, err := repo.Take(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "C", del.Row)
	assert.Equal(t, []uint64{10, 11}, del.SeatIDs)

	_, err = repo.Take(ctx, tok)
	assert.ErrorIs(t, err, ErrConfirmationNotFound)
}

func TestConfirmationRepoExpires(t *testing.T) {
	mr, rdb := newRedis(t)
	repo := NewConfirmationRepo(rdb, "confirm", time.Minute)
	ctx := context.Background()

	tok, err := repo.Put(ctx, RowDeletion{AuditoriumID: 2, Row: "C"})
	require.NoError(t, err)
	mr.FastForward(61 * time.Second)

	_, err = repo.Take(ctx, tok)
	assert.ErrorIs(t, err, ErrConfirmationNotFound)
}
