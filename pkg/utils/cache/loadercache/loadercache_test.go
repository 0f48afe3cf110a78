package loadercache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/irtelemetry/pkg/utils/cache"
)

func countingLoader(calls *int) LoaderFunc[string, int] {
	return func(ctx context.Context, key string) (*int, error) {
		*calls++
		v := len(key)
		return &v, nil
	}
}

func TestGet(t *testing.T) {
	calls := 0
	c := New(WithLoader(countingLoader(&calls)))
	v, err := c.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 3, *v)
	_, err = c.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Len())

	c.Invalidate(context.Background(), "abc")
	_, err = c.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestExpiration(t *testing.T) {
	calls := 0
	c := New(
		WithLoader(countingLoader(&calls)),
		WithExpiration[string, int](time.Nanosecond))
	_, _ = c.Get(context.Background(), "a")
	time.Sleep(time.Millisecond)
	_, _ = c.Get(context.Background(), "a")
	assert.Equal(t, 2, calls)
}

func TestMaxEntries(t *testing.T) {
	calls := 0
	c := New(
		WithLoader(countingLoader(&calls)),
		WithMaxEntries[string, int](2))
	for _, k := range []string{"a", "bb", "ccc"} {
		_, err := c.Get(context.Background(), k)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, c.Len())
	c.InvalidateAll(context.Background())
	assert.Equal(t, 0, c.Len())
}

func TestNoLoader(t *testing.T) {
	c := New[string, int]()
	_, err := c.Get(context.Background(), "a")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestLoaderError(t *testing.T) {
	c := New(WithLoader(func(ctx context.Context, key string) (*int, error) {
		return nil, errors.New("boom")
	}))
	_, err := c.Get(context.Background(), "a")
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len())
}
