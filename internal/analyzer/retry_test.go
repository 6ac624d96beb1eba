package analyzer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanno/internal/analyzer"
	"scanno/internal/domain"
	"scanno/internal/port"
)

// fakeAnalyzer returns queued errors in order, then succeeds.
type fakeAnalyzer struct {
	errs  []error
	calls int
	reply *port.AnalysisReply
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ domain.AnalysisRequest) (*port.AnalysisReply, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	if f.reply != nil {
		return f.reply, nil
	}
	return &port.AnalysisReply{Text: "{}", Provider: "fake", Model: "fake-1"}, nil
}

func tinyPolicy(attempts int) analyzer.RetryPolicy {
	return analyzer.RetryPolicy{
		MaxAttempts: attempts,
		MinWait:     time.Millisecond,
		MaxWait:     5 * time.Millisecond,
	}
}

func TestWithRetry_TransientThenSuccess(t *testing.T) {
	transient := &analyzer.StatusError{Provider: "fake", StatusCode: 503, Body: "overloaded"}
	fake := &fakeAnalyzer{errs: []error{transient, transient}}

	a := analyzer.WithRetry(fake, tinyPolicy(3))
	reply, err := a.Analyze(context.Background(), domain.AnalysisRequest{Path: domain.PathText})

	require.NoError(t, err)
	assert.Equal(t, "{}", reply.Text)
	assert.Equal(t, 3, fake.calls)
}

func TestWithRetry_PermanentError_NoRetry(t *testing.T) {
	permanent := &analyzer.StatusError{Provider: "fake", StatusCode: 401, Body: "bad key"}
	fake := &fakeAnalyzer{errs: []error{permanent}}

	a := analyzer.WithRetry(fake, tinyPolicy(3))
	_, err := a.Analyze(context.Background(), domain.AnalysisRequest{Path: domain.PathText})

	require.Error(t, err)
	assert.Equal(t, 1, fake.calls)

	var stErr *analyzer.StatusError
	require.ErrorAs(t, err, &stErr)
	assert.Equal(t, 401, stErr.StatusCode)
}

func TestWithRetry_Exhaustion_ReturnsLastError(t *testing.T) {
	first := &analyzer.StatusError{Provider: "fake", StatusCode: 502, Body: "bad gateway"}
	last := &analyzer.StatusError{Provider: "fake", StatusCode: 503, Body: "still down"}
	fake := &fakeAnalyzer{errs: []error{first, last}}

	a := analyzer.WithRetry(fake, tinyPolicy(2))
	_, err := a.Analyze(context.Background(), domain.AnalysisRequest{Path: domain.PathText})

	require.Error(t, err)
	assert.Equal(t, 2, fake.calls)

	var stErr *analyzer.StatusError
	require.ErrorAs(t, err, &stErr)
	assert.Equal(t, 503, stErr.StatusCode)
}

func TestWithRetry_ContextCancelled_StopsWaiting(t *testing.T) {
	transient := &analyzer.StatusError{Provider: "fake", StatusCode: 503, Body: "overloaded"}
	fake := &fakeAnalyzer{errs: []error{transient, transient, transient}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := analyzer.WithRetry(fake, analyzer.RetryPolicy{
		MaxAttempts: 3,
		MinWait:     time.Hour,
		MaxWait:     time.Hour,
	})
	_, err := a.Analyze(ctx, domain.AnalysisRequest{Path: domain.PathText})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, fake.calls)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, analyzer.IsTransient(analyzer.NewRateLimitError("openai", errors.New("429"), 1)))
	assert.True(t, analyzer.IsTransient(&analyzer.StatusError{StatusCode: 500}))
	assert.True(t, analyzer.IsTransient(&analyzer.StatusError{StatusCode: 503}))
	assert.False(t, analyzer.IsTransient(&analyzer.StatusError{StatusCode: 400}))
	assert.False(t, analyzer.IsTransient(&analyzer.StatusError{StatusCode: 401}))
	assert.False(t, analyzer.IsTransient(errors.New("marshaling request: boom")))
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 30, analyzer.ParseRetryAfterHeader("30"))
	assert.Equal(t, 0, analyzer.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, analyzer.ParseRetryAfterHeader("Wed, 21 Oct 2026 07:28:00 GMT"))
}
