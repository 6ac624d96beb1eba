package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"scanno/internal/domain"
	"scanno/internal/export"
)

func sampleAnalyses() []domain.Analysis {
	risk := domain.RiskMedium
	return []domain.Analysis{
		{
			ID:               uuid.MustParse("8c2f4b7e-1d3a-4e5f-9a6b-7c8d9e0f1a2b"),
			FileName:         "inspection.pdf",
			DocumentKind:     domain.KindPDF,
			ExtractionStatus: "text",
			AnalysisPath:     domain.PathText,
			Provider:         "openai",
			Model:            "gpt-4o",
			Status:           domain.StatusValid,
			RiskLevel:        &risk,
			ElapsedMS:        1432,
			CreatedAt:        time.Date(2026, 8, 12, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:           uuid.MustParse("0f0e0d0c-0b0a-4a49-8887-868584838281"),
			FileName:     "photo.jpg",
			DocumentKind: domain.KindJPEG,
			AnalysisPath: domain.PathVision,
			Provider:     "claude",
			Model:        "claude-sonnet-4-20250514",
			Status:       domain.StatusMalformed,
			ElapsedMS:    2890,
			CreatedAt:    time.Date(2026, 8, 12, 11, 0, 0, 0, time.UTC),
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, sampleAnalyses()))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, export.BOM))

	records, err := csv.NewReader(bytes.NewReader(out[len(export.BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "File Name", records[0][1])
	assert.Equal(t, "inspection.pdf", records[1][1])
	assert.Equal(t, "Medium", records[1][8])
	// Malformed record has no risk level
	assert.Equal(t, "", records[2][8])
	assert.Equal(t, "malformed", records[2][7])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, sampleAnalyses()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Analyses")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "inspection.pdf", rows[1][1])
	assert.Equal(t, "photo.jpg", rows[2][1])
}
