// Package extractor obtains machine-readable text from PDF uploads.
package extractor

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"rsc.io/pdf"

	"scanno/internal/domain"
	"scanno/internal/port"
)

// PDFExtractor extracts per-page text from PDF bytes using rsc.io/pdf.
// It implements port.TextExtractor.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDFExtractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

var _ port.TextExtractor = (*PDFExtractor)(nil)

// Extract concatenates per-page text in page order, joined by newlines.
// Pages with no text contribute an empty segment. A whitespace-only result
// means the PDF is scanned (Empty); an unreadable payload means Failed.
// rsc.io/pdf panics on structurally invalid input, so the whole walk runs
// under a recover that folds panics into the Failed variant.
func (e *PDFExtractor) Extract(pdfBytes []byte) (result domain.ExtractionResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("extractor.Extract: pdf library panic: %v", r)
			result = domain.FailedExtraction(fmt.Sprintf("pdf parsing panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return domain.FailedExtraction(fmt.Sprintf("opening pdf: %v", err))
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		var sb strings.Builder
		for _, item := range page.Content().Text {
			sb.WriteString(item.S)
		}
		pages = append(pages, sb.String())
	}

	text := strings.Join(pages, "\n")
	if strings.TrimSpace(text) == "" {
		return domain.EmptyExtraction()
	}
	return domain.TextExtraction(text)
}
