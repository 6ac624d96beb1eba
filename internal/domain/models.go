package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// UploadedDocument is the immutable value representing a single upload.
// It is created once per request and discarded after the pipeline completes.
type UploadedDocument struct {
	Filename string
	Kind     DocumentKind
	Data     []byte
}

// ExtractionResult is the tagged outcome of PDF text extraction:
// Text(content), Empty, or Failed(reason). Empty and Failed both route to
// the vision path but stay distinct for logging.
type ExtractionResult struct {
	Status  ExtractionStatus
	Content string
	Reason  string
}

// TextExtraction builds a successful extraction carrying searchable text.
func TextExtraction(content string) ExtractionResult {
	return ExtractionResult{Status: ExtractionText, Content: content}
}

// EmptyExtraction marks a PDF that parsed cleanly but has no text layer.
func EmptyExtraction() ExtractionResult {
	return ExtractionResult{Status: ExtractionEmpty}
}

// FailedExtraction marks a payload that could not be opened as a PDF.
func FailedExtraction(reason string) ExtractionResult {
	return ExtractionResult{Status: ExtractionFailed, Reason: reason}
}

// HasText reports whether extraction produced usable text.
func (r ExtractionResult) HasText() bool {
	return r.Status == ExtractionText
}

// AnalysisRequest carries exactly one prompt variant to the model:
// report text on the text path, raw file bytes on the vision path.
type AnalysisRequest struct {
	Path        AnalysisPath
	ReportText  string // text path only
	FileBytes   []byte // vision path only
	ContentType string // vision path only
}

// InspectionReport is the validated target schema for a model reply.
type InspectionReport struct {
	Summary        string    `json:"summary"`
	RiskLevel      RiskLevel `json:"risk_level"`
	Issues         []string  `json:"issues"`
	Maintenance    []string  `json:"maintenance"`
	Recommendation string    `json:"recommendation"`
}

// MalformedReply is the structured fallback returned when a model reply
// cannot be normalized into an InspectionReport. The raw reply is preserved
// verbatim; the diagnostic is for logs only and never serialized.
type MalformedReply struct {
	Error       string `json:"error"`
	RawResponse string `json:"raw_response"`
	Diagnostic  string `json:"-"`
}

// NormalizationOutcome is the terminal tagged value of the pipeline:
// exactly one of Report or Malformed is set.
type NormalizationOutcome struct {
	Report    *InspectionReport
	Malformed *MalformedReply
}

// ValidOutcome wraps a schema-valid report.
func ValidOutcome(report *InspectionReport) NormalizationOutcome {
	return NormalizationOutcome{Report: report}
}

// MalformedOutcome wraps a reply that failed parsing or validation. The
// error field mirrors the wire contract: {"error": "Invalid JSON", ...}.
func MalformedOutcome(raw, diagnostic string) NormalizationOutcome {
	return NormalizationOutcome{Malformed: &MalformedReply{
		Error:       "Invalid JSON",
		RawResponse: raw,
		Diagnostic:  diagnostic,
	}}
}

// Valid reports whether the outcome carries a validated report.
func (o NormalizationOutcome) Valid() bool {
	return o.Report != nil
}

// ReportBody serializes whichever variant is set, producing the "report"
// value returned to the boundary.
func (o NormalizationOutcome) ReportBody() (json.RawMessage, error) {
	if o.Report != nil {
		return json.Marshal(o.Report)
	}
	return json.Marshal(o.Malformed)
}

// Analysis is the persisted history record of one completed analysis.
// The pipeline itself is stateless; history is written after the fact.
type Analysis struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	FileName         string          `db:"file_name" json:"file_name"`
	DocumentKind     DocumentKind    `db:"document_kind" json:"document_kind"`
	ExtractionStatus string          `db:"extraction_status" json:"extraction_status,omitempty"`
	AnalysisPath     AnalysisPath    `db:"analysis_path" json:"analysis_path"`
	Provider         string          `db:"provider" json:"provider"`
	Model            string          `db:"model" json:"model"`
	Status           AnalysisStatus  `db:"status" json:"status"`
	RiskLevel        *RiskLevel      `db:"risk_level" json:"risk_level,omitempty"`
	Report           json.RawMessage `db:"report" json:"report"`
	ElapsedMS        int64           `db:"elapsed_ms" json:"elapsed_ms"`
	ArchiveBucket    string          `db:"archive_bucket" json:"archive_bucket,omitempty"`
	ArchiveKey       string          `db:"archive_key" json:"archive_key,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}
