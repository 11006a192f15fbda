package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func setupMiniredis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
}

func TestAside_MissThenHit(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetchCalls := 0
	fetch := func(dest *payload) func() error {
		return func() error {
			fetchCalls++
			dest.ID = 7
			dest.Name = "alice"
			return nil
		}
	}

	var first payload
	err := Aside(ctx, UserKey(7), &first, UserTTL, fetch(&first))
	require.NoError(t, err)
	assert.Equal(t, 1, fetchCalls)
	assert.Equal(t, "alice", first.Name)

	// Second read is served from cache, fetch not called again.
	var second payload
	err = Aside(ctx, UserKey(7), &second, UserTTL, fetch(&second))
	require.NoError(t, err)
	assert.Equal(t, 1, fetchCalls)
	assert.Equal(t, first, second)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	var dest payload
	wantErr := errors.New("store down")
	err := Aside(ctx, PostKey(1), &dest, time.Minute, func() error { return wantErr })
	assert.ErrorIs(t, err, wantErr)

	found, err := GetJSON(ctx, PostKey(1), &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAside_NilClientAlwaysFetches(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	fetchCalls := 0
	var dest payload
	for i := 0; i < 2; i++ {
		err := Aside(ctx, UserKey(1), &dest, UserTTL, func() error {
			fetchCalls++
			return nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, fetchCalls)
}

func TestInvalidateProfile(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, ProfileByUserKey(3), payload{ID: 3}, ProfileTTL))
	require.NoError(t, SetJSON(ctx, ProfileByHandleKey("alice"), payload{ID: 3}, ProfileTTL))

	InvalidateProfile(ctx, 3, "alice")

	var dest payload
	found, err := GetJSON(ctx, ProfileByUserKey(3), &dest)
	require.NoError(t, err)
	assert.False(t, found)
	found, err = GetJSON(ctx, ProfileByHandleKey("alice"), &dest)
	require.NoError(t, err)
	assert.False(t, found)
}
