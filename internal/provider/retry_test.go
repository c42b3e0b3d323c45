package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func fastPolicy(maxRetries int) retryPolicy {
	return retryPolicy{maxRetries: maxRetries, delay: time.Millisecond, maxDelay: 5 * time.Millisecond}
}

func TestWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	text, err := withRetry(context.Background(), fastPolicy(3), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", fmt.Errorf("%w: connection reset", ErrTransient)
		}
		return "translated text", nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if text != "translated text" {
		t.Errorf("unexpected text: %q", text)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestWithRetry_PermanentFailsImmediately(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), fastPolicy(5), func(context.Context) (string, error) {
		calls++
		return "", fmt.Errorf("%w: invalid API key", ErrPermanent)
	})
	if !errors.Is(err, ErrPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("permanent errors must not be retried, got %d calls", calls)
	}
}

func TestWithRetry_ExhaustsBudget(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), fastPolicy(2), func(context.Context) (string, error) {
		calls++
		return "", fmt.Errorf("%w: rate limited", ErrTransient)
	})
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient error after exhaustion, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts (1 + 2 retries), got %d", calls)
	}
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := withRetry(ctx, retryPolicy{maxRetries: 10, delay: time.Hour, maxDelay: time.Hour}, func(context.Context) (string, error) {
			calls++
			return "", fmt.Errorf("%w: timeout", ErrTransient)
		})
		if !errors.Is(err, ErrTransient) {
			t.Errorf("expected transient error on cancellation, got %v", err)
		}
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("withRetry did not return after cancellation")
	}
	if calls != 1 {
		t.Errorf("expected 1 call before the backoff sleep, got %d", calls)
	}
}

func TestStripThinking(t *testing.T) {
	in := "<think>reasoning\nacross lines</think>\nThe translation."
	if got := stripThinking(in); got != "The translation." {
		t.Errorf("unexpected result: %q", got)
	}

	plain := "No thinking block here."
	if got := stripThinking(plain); got != plain {
		t.Errorf("plain text should pass through, got %q", got)
	}
}

func TestValidateReply_RejectsShortReplies(t *testing.T) {
	if _, err := validateReply("<think>only thoughts</think>"); !errors.Is(err, ErrTransient) {
		t.Errorf("reply reduced to nothing should be transient, got %v", err)
	}
	if _, err := validateReply("ok"); !errors.Is(err, ErrTransient) {
		t.Errorf("too-short reply should be transient, got %v", err)
	}
	text, err := validateReply("A real translated paragraph.")
	if err != nil || text != "A real translated paragraph." {
		t.Errorf("valid reply rejected: %q, %v", text, err)
	}
}
