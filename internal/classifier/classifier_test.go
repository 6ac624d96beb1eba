package classifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scanno/internal/classifier"
	"scanno/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     domain.DocumentKind
	}{
		{"pdf lowercase", "report.pdf", domain.KindPDF},
		{"pdf uppercase", "REPORT.PDF", domain.KindPDF},
		{"pdf mixed case", "Report.Pdf", domain.KindPDF},
		{"jpg", "photo.jpg", domain.KindJPEG},
		{"jpeg", "photo.jpeg", domain.KindJPEG},
		{"jpeg uppercase", "PHOTO.JPEG", domain.KindJPEG},
		{"png", "scan.png", domain.KindPNG},
		{"docx rejected", "report.docx", domain.KindUnsupported},
		{"txt rejected", "notes.txt", domain.KindUnsupported},
		{"no extension", "report", domain.KindUnsupported},
		{"dotfile", ".pdf", domain.KindPDF},
		{"multiple dots", "car.inspection.final.pdf", domain.KindPDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.filename, []byte("irrelevant"))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_IgnoresContent(t *testing.T) {
	// Classification is extension-only: a PDF payload with a .txt name is
	// still unsupported, and garbage bytes with a .pdf name still classify.
	assert.Equal(t, domain.KindUnsupported, classifier.Classify("real.txt", []byte("%PDF-1.4")))
	assert.Equal(t, domain.KindPDF, classifier.Classify("fake.pdf", []byte("not a pdf at all")))
}
