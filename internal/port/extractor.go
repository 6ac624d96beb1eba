package port

import "scanno/internal/domain"

// TextExtractor abstracts the PDF-parsing collaborator. Implementations
// never return an error: parse failures are a tagged variant of the
// result, since a scanned PDF and a corrupt PDF are policy-equivalent to
// the dispatcher.
type TextExtractor interface {
	Extract(pdfBytes []byte) domain.ExtractionResult
}
