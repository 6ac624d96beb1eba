// Package export renders analysis history as downloadable spreadsheets.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"scanno/internal/domain"
)

// BOM is the UTF-8 byte order mark, written first for Excel compatibility
// on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the export header row shared by the CSV and XLSX writers.
var columns = []string{
	"ID",
	"File Name",
	"Document Kind",
	"Extraction Status",
	"Analysis Path",
	"Provider",
	"Model",
	"Status",
	"Risk Level",
	"Elapsed (ms)",
	"Created At",
}

// WriteCSV streams the analyses as CSV rows prefixed with a UTF-8 BOM.
func WriteCSV(w io.Writer, analyses []domain.Analysis) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for i := range analyses {
		if err := cw.Write(analysisToRow(&analyses[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func analysisToRow(a *domain.Analysis) []string {
	risk := ""
	if a.RiskLevel != nil {
		risk = string(*a.RiskLevel)
	}
	return []string{
		a.ID.String(),
		a.FileName,
		string(a.DocumentKind),
		a.ExtractionStatus,
		string(a.AnalysisPath),
		a.Provider,
		a.Model,
		string(a.Status),
		risk,
		strconv.FormatInt(a.ElapsedMS, 10),
		a.CreatedAt.Format(time.RFC3339),
	}
}
