package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/async"
)

func TestGo_Result(t *testing.T) {
	t.Parallel()
	f := async.Go(context.Background(), func(context.Context) (int, error) {
		return 42, nil
	})

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err, ok := f.Result()
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestGo_Error(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	f := async.Go(context.Background(), func(context.Context) (string, error) {
		return "", boom
	})
	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestGo_Panic(t *testing.T) {
	t.Parallel()
	f := async.Go(context.Background(), func(context.Context) (int, error) {
		panic("kaboom")
	})
	_, err := f.Await(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestFuture_Pending(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	f := async.Go(context.Background(), func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	_, _, ok := f.Result()
	assert.False(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	<-f.Done()
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestWaitAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mk := func(v int, err error) *async.Future[int] {
		return async.Go(ctx, func(context.Context) (int, error) { return v, err })
	}

	res, err := async.WaitAll(ctx, mk(1, nil), mk(2, nil), mk(3, nil))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, res)

	boom := errors.New("boom")
	res, err = async.WaitAll(ctx, mk(1, nil), mk(0, boom), mk(3, nil))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1}, res)

	_, err = async.WaitAll[int](ctx)
	assert.ErrorIs(t, err, async.ErrNoFutures)
}
