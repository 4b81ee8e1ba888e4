package telegram

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"sync"
	"time"

	botpkg "github.com/botfoundry/menubot/bot"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per chat so a burst of replies to
// one chat cannot starve the others.
type RateLimiter struct {
	limiters map[int64]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
	logger   botpkg.Logger
}

// NewRateLimiter creates a limiter allowing msgPerSec sends per chat.
func NewRateLimiter(msgPerSec float64, burst int) *RateLimiter {
	if msgPerSec <= 0 {
		msgPerSec = 1.0
	}
	if burst <= 0 {
		burst = 3
	}
	return &RateLimiter{
		limiters: make(map[int64]*rate.Limiter),
		rate:     rate.Limit(msgPerSec),
		burst:    burst,
	}
}

// SetLogger attaches a logger for retry failures.
func (rl *RateLimiter) SetLogger(logger botpkg.Logger) {
	rl.logger = logger
}

// Wait blocks until the chat's bucket allows another send.
func (rl *RateLimiter) Wait(ctx context.Context, chatID int64) error {
	return rl.getLimiter(chatID).Wait(ctx)
}

func (rl *RateLimiter) getLimiter(chatID int64) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[chatID]
	rl.mu.RUnlock()

	if exists {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.limiters[chatID]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters[chatID] = limiter
	return limiter
}

// APIError carries a Telegram API failure with optional flood-wait hint.
type APIError struct {
	Code       int
	Message    string
	RetryAfter int
}

func (e *APIError) Error() string {
	return e.Message
}

var retryAfterPattern = regexp.MustCompile(`(?i)retry\s+after[:\s]+(\d+)`)

func parseRetryAfter(err error) (int, bool) {
	if err == nil {
		return 0, false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter, true
	}

	if matches := retryAfterPattern.FindStringSubmatch(err.Error()); len(matches) == 2 {
		if parsed, parseErr := strconv.Atoi(matches[1]); parseErr == nil {
			return parsed, parsed > 0
		}
	}

	return 0, false
}

// WithRetry runs fn under the chat's rate limit, retrying when the API
// reports a flood wait. Non-flood errors return immediately.
func WithRetry(ctx context.Context, rl *RateLimiter, chatID int64, fn func() error) error {
	if fn == nil {
		return nil
	}
	if rl == nil {
		return fn()
	}

	const maxRetries = 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := rl.Wait(ctx, chatID); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}

		retryAfter, shouldRetry := parseRetryAfter(err)
		if !shouldRetry {
			return err
		}

		if rl.logger != nil {
			rl.logger.Warn("flood wait", "chat_id", chatID, "retry_after", retryAfter, "attempt", attempt+1)
		}

		if attempt < maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(retryAfter) * time.Second):
			}
		}
	}

	return &APIError{Code: 429, Message: "max retries exceeded"}
}
