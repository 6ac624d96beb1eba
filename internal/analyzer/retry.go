package analyzer

import (
	"context"
	"errors"
	"log"
	"time"

	"scanno/internal/domain"
	"scanno/internal/port"
)

// RetryPolicy bounds the retry loop around a ReportAnalyzer: at most
// MaxAttempts calls, waiting exponentially from MinWait up to MaxWait
// between transient failures.
type RetryPolicy struct {
	MaxAttempts int
	MinWait     time.Duration
	MaxWait     time.Duration
}

// DefaultRetryPolicy mirrors the standalone analyzer's policy: 3 attempts,
// waits doubling from 4s capped at 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, MinWait: 4 * time.Second, MaxWait: 10 * time.Second}
}

type retryAnalyzer struct {
	inner  port.ReportAnalyzer
	policy RetryPolicy
}

// WithRetry wraps an analyzer with a bounded exponential-backoff retry
// policy. Only transient failures are retried; permanent errors and
// exhausted attempts surface the last error unchanged. Rate-limited
// providers are waited out for at least their advertised Retry-After.
func WithRetry(inner port.ReportAnalyzer, policy RetryPolicy) port.ReportAnalyzer {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.MinWait <= 0 {
		policy.MinWait = time.Second
	}
	if policy.MaxWait < policy.MinWait {
		policy.MaxWait = policy.MinWait
	}
	return &retryAnalyzer{inner: inner, policy: policy}
}

func (r *retryAnalyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) (*port.AnalysisReply, error) {
	wait := r.policy.MinWait
	var lastErr error

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		reply, err := r.inner.Analyze(ctx, req)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		if !IsTransient(err) || attempt == r.policy.MaxAttempts {
			break
		}

		delay := wait
		var rlErr *RateLimitError
		if errors.As(err, &rlErr) && rlErr.RetryAfter > delay {
			delay = rlErr.RetryAfter
		}
		log.Printf("analyzer.retry: attempt %d/%d failed, retrying in %s: %v",
			attempt, r.policy.MaxAttempts, delay, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}

		wait *= 2
		if wait > r.policy.MaxWait {
			wait = r.policy.MaxWait
		}
	}

	return nil, lastErr
}
