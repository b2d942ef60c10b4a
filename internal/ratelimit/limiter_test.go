package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLimiter_Disabled(t *testing.T) {
	l := NewLimiter(0, 0)
	assert.Nil(t, l)
	assert.True(t, l.Allow())
	assert.NoError(t, l.Wait(context.Background()))

	calls := 0
	err := l.Retry(context.Background(), func() error {
		calls++
		return errors.New("boom")
	}, func(error) bool { return true })
	assert.Error(t, err)
	assert.Equal(t, 1, calls, "nil 限流器不重试")
}

func TestLimiter_BurstThenRefill(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLimiter(60, 2)
	l.now = func() time.Time { return now }
	l.lastRefillTime = now

	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow(), "容量耗尽")

	now = now.Add(time.Second)
	assert.True(t, l.Allow(), "60/min 每秒补充一个令牌")
	assert.False(t, l.Allow())

	now = now.Add(time.Hour)
	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow(), "补充不超过容量")
}

func TestLimiter_DefaultBurst(t *testing.T) {
	assert.Equal(t, 30.0, NewLimiter(60, 0).capacity)
	assert.Equal(t, 1.0, NewLimiter(1, 0).capacity)
}

func TestLimiter_WaitCancelled(t *testing.T) {
	l := NewLimiter(1, 1)
	require.True(t, l.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)
}

func TestLimiter_Retry(t *testing.T) {
	transient := errors.New("unexpected EOF")
	permanent := errors.New("unsupported")
	retryable := func(err error) bool { return errors.Is(err, transient) }

	t.Run("succeeds after transient failures", func(t *testing.T) {
		l := NewLimiter(6000, 10).WithRetryPolicy(time.Millisecond, 3)
		calls := 0
		err := l.Retry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return transient
			}
			return nil
		}, retryable)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		l := NewLimiter(6000, 10).WithRetryPolicy(time.Millisecond, 2)
		calls := 0
		err := l.Retry(context.Background(), func() error {
			calls++
			return transient
		}, retryable)
		assert.ErrorIs(t, err, transient)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		l := NewLimiter(6000, 10).WithRetryPolicy(time.Millisecond, 5)
		calls := 0
		err := l.Retry(context.Background(), func() error {
			calls++
			return permanent
		}, retryable)
		assert.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, calls)
	})
}
