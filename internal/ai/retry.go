package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// RetryConfig holds the shared backoff, timeout, and throughput settings for
// API calls. Per-call retry counts are passed to Complete, since the
// generation and review paths tolerate failure differently.
type RetryConfig struct {
	InitialBackoff    time.Duration // first retry delay (default: 1s)
	MaxBackoff        time.Duration // backoff ceiling (default: 8s)
	BackoffMultiplier float64       // growth factor (default: 2.0)
	Timeout           time.Duration // per-attempt timeout (default: 60s)

	MaxConcurrentCalls int     // in-flight call cap (default: 3, 0 = unlimited)
	RequestsPerSecond  float64 // client-side rate limit (default: 2, 0 = unlimited)
}

// DefaultRetryConfig returns the default settings.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialBackoff:     1 * time.Second,
		MaxBackoff:         8 * time.Second,
		BackoffMultiplier:  2.0,
		Timeout:            60 * time.Second,
		MaxConcurrentCalls: 3,
		RequestsPerSecond:  2,
	}
}

// retryWithBackoff runs fn under the concurrency cap and rate limit, with up
// to maxRetries additional attempts on retriable errors.
func (c *Client) retryWithBackoff(ctx context.Context, operation string, maxRetries int, fn func(context.Context) error) error {
	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return fmt.Errorf("acquiring call slot for %s: %w", operation, err)
		}
		defer c.sem.Release(1)
	}

	var lastErr error
	backoff := c.retry.InitialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("%s: %w", operation, err)
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.retry.Timeout)
		err := fn(attemptCtx)
		cancel()

		if err == nil {
			if attempt > 0 {
				slog.Info("API call succeeded after retry", "operation", operation, "attempts", attempt+1)
			}
			return nil
		}
		lastErr = err

		if !isRetriableError(err) {
			return err
		}
		if attempt == maxRetries {
			break
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", operation, ctx.Err())
		}

		slog.Warn("API call failed, retrying",
			"operation", operation,
			"attempt", attempt+1,
			"backoff", backoff,
			"error", err)

		select {
		case <-time.After(backoff):
			backoff = time.Duration(float64(backoff) * c.retry.BackoffMultiplier)
			if backoff > c.retry.MaxBackoff {
				backoff = c.retry.MaxBackoff
			}
		case <-ctx.Done():
			return fmt.Errorf("%s: canceled during backoff: %w", operation, ctx.Err())
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, maxRetries+1, lastErr)
}

// isRetriableError reports whether an error is transient. Rate limits,
// server errors, and network failures retry; other client errors do not.
func isRetriableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := err.Error()

	if strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit") {
		return true
	}
	if strings.Contains(errStr, "500") || strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") || strings.Contains(errStr, "504") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "bad gateway") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "gateway timeout") {
		return true
	}
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "network") {
		return true
	}
	return false
}

func logCall(operation string, inputTokens, outputTokens int64, duration time.Duration) {
	slog.Debug("API call completed",
		"operation", operation,
		"input_tokens", inputTokens,
		"output_tokens", outputTokens,
		"duration", duration)
}
