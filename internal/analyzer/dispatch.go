// Package analyzer routes classified documents to a model modality and
// hosts the provider registry, retry policy, and fallback chain.
package analyzer

import (
	"fmt"

	"scanno/internal/domain"
)

// BuildRequest selects the analysis path for a document. The routing is a
// total function of classifier and extraction outcome:
//
//	PDF  + Text           -> TextPrompt(extracted text)
//	PDF  + Empty | Failed -> VisionPrompt(raw PDF bytes)
//	Image                 -> VisionPrompt(raw image bytes)
//	Unsupported           -> rejected before dispatch
//
// Empty and Failed extractions are deliberately indistinguishable here:
// either way no extractable text was obtained.
func BuildRequest(doc domain.UploadedDocument, extraction *domain.ExtractionResult) (domain.AnalysisRequest, error) {
	switch {
	case doc.Kind == domain.KindPDF:
		if extraction != nil && extraction.HasText() {
			return domain.AnalysisRequest{
				Path:       domain.PathText,
				ReportText: extraction.Content,
			}, nil
		}
		return domain.AnalysisRequest{
			Path:        domain.PathVision,
			FileBytes:   doc.Data,
			ContentType: doc.Kind.ContentType(),
		}, nil

	case doc.Kind.IsImage():
		return domain.AnalysisRequest{
			Path:        domain.PathVision,
			FileBytes:   doc.Data,
			ContentType: doc.Kind.ContentType(),
		}, nil

	default:
		return domain.AnalysisRequest{}, fmt.Errorf("dispatching %q: %w", doc.Filename, domain.ErrUnsupportedDocument)
	}
}
