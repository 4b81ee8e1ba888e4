package telegram

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		ok   bool
	}{
		{name: "nil", err: nil, want: 0, ok: false},
		{name: "api error", err: &APIError{RetryAfter: 9, Message: "rate"}, want: 9, ok: true},
		{name: "text pattern", err: errors.New("Too Many Requests: retry after 4"), want: 4, ok: true},
		{name: "colon form", err: errors.New("flood control, retry after: 12"), want: 12, ok: true},
		{name: "wrapped api error", err: fmt.Errorf("send: %w", &APIError{RetryAfter: 2}), want: 2, ok: true},
		{name: "unrelated", err: errors.New("other error"), want: 0, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseRetryAfter(tt.err)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("parseRetryAfter() = (%d,%v), want (%d,%v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestWithRetryNilRateLimiter(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), nil, 0, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("WithRetry returned err: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestWithRetryNonFloodErrorReturnsImmediately(t *testing.T) {
	rl := NewRateLimiter(1000, 10)
	calls := 0
	boom := errors.New("bad request")

	err := WithRetry(context.Background(), rl, 1, func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected original error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestWithRetryFloodWaitRetries(t *testing.T) {
	rl := NewRateLimiter(1000, 10)
	calls := 0

	err := WithRetry(context.Background(), rl, 1, func() error {
		calls++
		if calls < 2 {
			return &APIError{Code: 429, Message: "flood", RetryAfter: 1}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after flood retry, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestWithRetryContextCancelOnRetry(t *testing.T) {
	rl := NewRateLimiter(1000, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := WithRetry(ctx, rl, 1, func() error {
		return fmt.Errorf("retry after 10")
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRateLimiterPerChatIsolation(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	ctx := context.Background()

	// First send per chat consumes the burst token without blocking.
	start := time.Now()
	if err := rl.Wait(ctx, 1); err != nil {
		t.Fatalf("wait chat 1: %v", err)
	}
	if err := rl.Wait(ctx, 2); err != nil {
		t.Fatalf("wait chat 2: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("independent chats blocked each other: %v", elapsed)
	}
}
