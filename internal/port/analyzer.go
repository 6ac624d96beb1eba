package port

import (
	"context"

	"scanno/internal/domain"
)

// AnalysisReply carries the model's textual answer verbatim, plus the
// provenance needed for history records. No structure is assumed beyond
// "textual"; interpretation happens downstream in the normalizer.
type AnalysisReply struct {
	Text     string
	Provider string
	Model    string
}

// ReportAnalyzer abstracts the external model-inference collaborator.
// Analyze is the pipeline's single suspension point; transient failures
// are retried by a wrapping policy, not by implementations.
type ReportAnalyzer interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*AnalysisReply, error)
}
