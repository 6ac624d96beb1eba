package analyzer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanno/internal/analyzer"
	"scanno/internal/config"
	"scanno/internal/domain"
	"scanno/internal/port"
)

func TestFallbackAnalyzer_PrimarySucceeds(t *testing.T) {
	primary := &fakeAnalyzer{reply: &port.AnalysisReply{Text: "{}", Provider: "openai", Model: "gpt-4o"}}
	secondary := &fakeAnalyzer{}

	f := analyzer.NewFallbackAnalyzer(
		[]port.ReportAnalyzer{primary, secondary},
		[]string{"openai", "claude"},
	)

	reply, err := f.Analyze(context.Background(), domain.AnalysisRequest{Path: domain.PathText})

	require.NoError(t, err)
	assert.Equal(t, "openai", reply.Provider)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls)
}

func TestFallbackAnalyzer_RateLimitedPrimary_FallsThrough(t *testing.T) {
	rlErr := analyzer.NewRateLimitError("openai", errors.New("429"), 60)
	primary := &fakeAnalyzer{errs: []error{rlErr}}
	secondary := &fakeAnalyzer{reply: &port.AnalysisReply{Text: "{}", Provider: "claude", Model: "claude-sonnet-4-20250514"}}

	f := analyzer.NewFallbackAnalyzer(
		[]port.ReportAnalyzer{primary, secondary},
		[]string{"openai", "claude"},
	)

	reply, err := f.Analyze(context.Background(), domain.AnalysisRequest{Path: domain.PathText})

	require.NoError(t, err)
	assert.Equal(t, "claude", reply.Provider)
}

func TestFallbackAnalyzer_OpenCircuit_SkipsProvider(t *testing.T) {
	rlErr := analyzer.NewRateLimitError("openai", errors.New("429"), 300)
	primary := &fakeAnalyzer{errs: []error{rlErr}}
	secondary := &fakeAnalyzer{reply: &port.AnalysisReply{Text: "{}", Provider: "claude", Model: "claude-sonnet-4-20250514"}}

	f := analyzer.NewFallbackAnalyzer(
		[]port.ReportAnalyzer{primary, secondary},
		[]string{"openai", "claude"},
	)

	// First call opens the primary's circuit.
	_, err := f.Analyze(context.Background(), domain.AnalysisRequest{Path: domain.PathText})
	require.NoError(t, err)
	assert.Equal(t, 1, primary.calls)

	// Second call must skip the primary entirely.
	_, err = f.Analyze(context.Background(), domain.AnalysisRequest{Path: domain.PathText})
	require.NoError(t, err)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 2, secondary.calls)
}

func TestFallbackAnalyzer_AllRateLimited(t *testing.T) {
	primary := &fakeAnalyzer{errs: []error{analyzer.NewRateLimitError("openai", errors.New("429"), 60)}}
	secondary := &fakeAnalyzer{errs: []error{analyzer.NewRateLimitError("claude", errors.New("429"), 120)}}

	f := analyzer.NewFallbackAnalyzer(
		[]port.ReportAnalyzer{primary, secondary},
		[]string{"openai", "claude"},
	)

	_, err := f.Analyze(context.Background(), domain.AnalysisRequest{Path: domain.PathText})

	require.Error(t, err)
	var rlErr *analyzer.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "all", rlErr.Provider)
}

func TestFallbackAnalyzer_NonRateLimitFailure_Propagates(t *testing.T) {
	primary := &fakeAnalyzer{errs: []error{&analyzer.StatusError{Provider: "openai", StatusCode: 500, Body: "boom"}}}
	secondary := &fakeAnalyzer{errs: []error{&analyzer.StatusError{Provider: "claude", StatusCode: 503, Body: "down"}}}

	f := analyzer.NewFallbackAnalyzer(
		[]port.ReportAnalyzer{primary, secondary},
		[]string{"openai", "claude"},
	)

	_, err := f.Analyze(context.Background(), domain.AnalysisRequest{Path: domain.PathText})

	require.Error(t, err)
	var stErr *analyzer.StatusError
	require.ErrorAs(t, err, &stErr)
	assert.Equal(t, 503, stErr.StatusCode)
}

func TestNewAnalyzer_UnknownProvider(t *testing.T) {
	_, err := analyzer.NewAnalyzer(&config.AnalyzerProviderConfig{Provider: "nonexistent"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown analyzer provider")
}
