package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCalculateBackoffCapsAtMaxDelay(t *testing.T) {
	config := RetryConfig{BaseDelay: time.Second, MaxDelay: 3 * time.Second, JitterFactor: 0}
	d := calculateBackoff(10, config)
	if d != 3*time.Second {
		t.Fatalf("expected backoff capped at max delay, got %s", d)
	}
}

func TestRetryWithResultSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	outcome := RetryWithResult(context.Background(), RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}, func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", &TransientError{Message: "not yet"}
		}
		return "ok", nil
	})
	if !outcome.Ok() {
		t.Fatalf("expected success, got err=%v", outcome.Err)
	}
	if outcome.Value != "ok" {
		t.Fatalf("expected value ok, got %q", outcome.Value)
	}
	if outcome.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", outcome.Attempts)
	}
}

func TestRetryWithResultStopsOnPermanentError(t *testing.T) {
	attempts := 0
	outcome := RetryWithResult(context.Background(), RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}, func(ctx context.Context) (string, error) {
		attempts++
		return "", &PermanentError{Message: "no point retrying"}
	})
	if outcome.Ok() {
		t.Fatalf("expected failure")
	}
	if attempts != 1 {
		t.Fatalf("expected exactly 1 attempt for a permanent error, got %d", attempts)
	}
}

func TestRetryWithResultRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := RetryWithResult(ctx, RetryConfig{MaxAttempts: 5, BaseDelay: time.Second, MaxDelay: time.Second}, func(ctx context.Context) (string, error) {
		return "", &TransientError{Message: "keep trying"}
	})
	if outcome.Err == nil {
		t.Fatalf("expected an error after exhausting the first attempt")
	}
	if !errors.Is(outcome.Err, context.Canceled) && !IsTransient(outcome.Err) {
		t.Fatalf("expected context.Canceled or the transient error, got %v", outcome.Err)
	}
}
