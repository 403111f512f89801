package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// rateLimiter is a token bucket shared by every request a component makes.
type rateLimiter struct {
	stopCh    chan struct{}
	tokens    int
	capacity  int
	mu        sync.Mutex
	closeOnce sync.Once
}

// newRateLimiter creates a limiter allowing requestsPerMinute calls, refilled
// one token at a time.
func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}

	rl := &rateLimiter{
		tokens:   requestsPerMinute,
		capacity: requestsPerMinute,
		stopCh:   make(chan struct{}),
	}

	go rl.refill(time.Minute / time.Duration(requestsPerMinute))

	return rl
}

// wait blocks until a token is available or the context is canceled.
func (rl *rateLimiter) wait(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if rl.tryAcquire() {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("rate limiter canceled: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (rl *rateLimiter) tryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.tokens > 0 {
		rl.tokens--
		return true
	}
	return false
}

func (rl *rateLimiter) refill(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.mu.Lock()
			if rl.tokens < rl.capacity {
				rl.tokens++
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) available() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.tokens
}

// Close stops the refill goroutine. It is safe to call more than once.
func (rl *rateLimiter) Close() {
	rl.closeOnce.Do(func() { close(rl.stopCh) })
}

// limitedClient gates every Analyze call on a shared rateLimiter.
type limitedClient struct {
	client  Client
	limiter *rateLimiter
}

// WithRateLimit wraps client so that at most requestsPerMinute calls start
// per minute. The returned closer stops the limiter.
func WithRateLimit(client Client, requestsPerMinute int) (Client, func()) {
	limiter := newRateLimiter(requestsPerMinute)
	return &limitedClient{client: client, limiter: limiter}, limiter.Close
}

func (c *limitedClient) Analyze(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return "", err
	}
	return c.client.Analyze(ctx, prompt, systemPrompt)
}
