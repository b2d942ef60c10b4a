// Package ratelimit 令牌桶限流和带退避的重试
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter 令牌桶限流器，按每分钟处理的文档数限速
type Limiter struct {
	rate           float64 // 每秒生成的令牌数
	capacity       float64
	tokens         float64
	lastRefillTime time.Time
	mutex          sync.Mutex
	retryWaitTime  time.Duration
	maxRetries     int
	now            func() time.Time
}

// NewLimiter 创建限流器；perMinute <= 0 时返回 nil，nil 限流器不限速也不重试
// burst <= 0 时容量为每分钟速率的一半（至少1）
func NewLimiter(perMinute int, burst int) *Limiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = perMinute / 2
		if burst <= 0 {
			burst = 1
		}
	}
	return &Limiter{
		rate:           float64(perMinute) / 60.0,
		capacity:       float64(burst),
		tokens:         float64(burst),
		lastRefillTime: time.Now(),
		retryWaitTime:  500 * time.Millisecond,
		maxRetries:     2,
		now:            time.Now,
	}
}

// WithRetryPolicy 设置重试等待基数和最大重试次数
func (l *Limiter) WithRetryPolicy(waitTime time.Duration, maxRetries int) *Limiter {
	if l == nil {
		return nil
	}
	if waitTime > 0 {
		l.retryWaitTime = waitTime
	}
	if maxRetries >= 0 {
		l.maxRetries = maxRetries
	}
	return l
}

func (l *Limiter) refill() {
	now := l.now()
	elapsed := now.Sub(l.lastRefillTime).Seconds()
	l.lastRefillTime = now

	l.tokens += elapsed * l.rate
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}
}

// Allow 有令牌时消耗一个并返回 true
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.refill()
	if l.tokens >= 1.0 {
		l.tokens -= 1.0
		return true
	}
	return false
}

// Wait 阻塞直到拿到令牌或 ctx 结束
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}
	for {
		l.mutex.Lock()
		l.refill()
		if l.tokens >= 1.0 {
			l.tokens -= 1.0
			l.mutex.Unlock()
			return nil
		}
		waitTime := time.Duration((1.0 - l.tokens) / l.rate * float64(time.Second))
		l.mutex.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

// Retry 每次尝试前先取令牌；fn 失败且 retryable 返回 true 时按指数退避重试
func (l *Limiter) Retry(ctx context.Context, fn func() error, retryable func(error) bool) error {
	if l == nil {
		return fn()
	}
	var err error
	for attempt := 0; attempt <= l.maxRetries; attempt++ {
		if err = l.Wait(ctx); err != nil {
			return err
		}
		err = fn()
		if err == nil || retryable == nil || !retryable(err) || attempt >= l.maxRetries {
			return err
		}

		backoff := l.retryWaitTime * time.Duration(1<<uint(attempt))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}
