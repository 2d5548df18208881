package headless

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionValidation(t *testing.T) {
	t.Parallel()

	_, err := NewSession(Config{NavigationTimeout: -time.Second})
	require.Error(t, err)

	s, err := NewSession(Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	assert.Equal(t, 45*time.Second, s.cfg.NavigationTimeout)
}

func TestSessionCloseIsIdempotentAndFinal(t *testing.T) {
	t.Parallel()

	s, err := NewSession(Config{NavigationTimeout: time.Second})
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.FetchRenderedPage(context.Background(), "https://example.com", "body")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.ClickAndWait(context.Background(), "button", "body")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Start(context.Background()), ErrClosed)
}

func TestSessionStartHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	s, err := NewSession(Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Start(ctx), context.Canceled)
}

func TestTaskContextUsesCallerDeadline(t *testing.T) {
	t.Parallel()

	s, err := NewSession(Config{NavigationTimeout: time.Hour})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	taskCtx, taskCancel := s.taskContext(ctx)
	defer taskCancel()

	deadline, ok := taskCtx.Deadline()
	require.True(t, ok)
	assert.LessOrEqual(t, time.Until(deadline), 2*time.Second)

	noDeadline, noCancel := s.taskContext(context.Background())
	defer noCancel()
	deadline, ok = noDeadline.Deadline()
	require.True(t, ok)
	assert.Greater(t, time.Until(deadline), 59*time.Minute)
}

func TestTaskContextFollowsCallerCancel(t *testing.T) {
	t.Parallel()

	s, err := NewSession(Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	taskCtx, taskCancel := s.taskContext(ctx)
	defer taskCancel()

	cancel()
	select {
	case <-taskCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("task context not canceled with caller")
	}
}

func TestResponseMetaCheckStatus(t *testing.T) {
	t.Parallel()

	meta := newResponseMeta()
	require.NoError(t, meta.checkStatus())

	meta.capture(&network.EventResponseReceived{
		Type:     network.ResourceTypeDocument,
		Response: &network.Response{Status: 404, URL: "https://www.mcdonalds.com/ua/uk-ua/product/gone.html"},
	})
	err := meta.checkStatus()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPageStatus)
	assert.Contains(t, err.Error(), "404")

	meta.captureEvent(&network.EventResponseReceived{
		Type:     network.ResourceTypeImage,
		Response: &network.Response{Status: 500},
	})
	assert.ErrorIs(t, meta.checkStatus(), ErrPageStatus, "non-document responses are ignored")

	meta.reset()
	require.NoError(t, meta.checkStatus())

	meta.captureEvent(&network.EventResponseReceived{
		Type:     network.ResourceTypeDocument,
		Response: &network.Response{Status: 200},
	})
	require.NoError(t, meta.checkStatus())
}

func TestContextError(t *testing.T) {
	t.Parallel()

	base := errors.New("chromedp: wait failed")
	assert.Equal(t, base, contextError(context.Background(), base))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := contextError(ctx, base)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "wait failed")
	assert.Equal(t, context.Canceled, contextError(ctx, context.Canceled))
}

func TestAllocatorOptions(t *testing.T) {
	t.Parallel()

	base := len(allocatorOptions(Config{}))
	assert.Equal(t, base+2, len(allocatorOptions(Config{NoSandbox: true, ExecPath: "/usr/bin/chromium"})))
}

func TestNoopSession(t *testing.T) {
	t.Parallel()

	s := NewNoop()
	_, err := s.FetchRenderedPage(context.Background(), "https://example.com", "body")
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = s.ClickAndWait(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NoError(t, s.Close())
}
