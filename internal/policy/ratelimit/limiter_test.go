package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterWaitPacesSameHost(t *testing.T) {
	t.Parallel()

	l := New(Config{PagesPerSecond: 10, Burst: 1})
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx, "https://www.mcdonalds.com/ua/uk-ua/product/1.html"))

	start := time.Now()
	require.NoError(t, l.Wait(ctx, "https://www.mcdonalds.com/ua/uk-ua/product/2.html"))
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestLimiterHostsAreIndependent(t *testing.T) {
	t.Parallel()

	l := New(Config{PagesPerSecond: 1, Burst: 1})
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx, "https://a.example/1"))

	start := time.Now()
	require.NoError(t, l.Wait(ctx, "https://b.example/1"))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestLimiterDisabled(t *testing.T) {
	t.Parallel()

	l := New(Config{})
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 50; i++ {
		require.NoError(t, l.Wait(ctx, "https://www.mcdonalds.com/p"))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestLimiterWaitCanceled(t *testing.T) {
	t.Parallel()

	l := New(Config{PagesPerSecond: 0.1, Burst: 1})
	require.NoError(t, l.Wait(context.Background(), "https://www.mcdonalds.com/p"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.Wait(ctx, "https://www.mcdonalds.com/p")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHostOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "www.mcdonalds.com", hostOf("https://WWW.McDonalds.com/ua"))
	assert.Equal(t, "unknown", hostOf("/relative/path"))
	assert.Equal(t, "unknown", hostOf("http://%"))
}
