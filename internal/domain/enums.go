package domain

// DocumentKind is the media kind inferred for an uploaded document.
type DocumentKind string

const (
	KindPDF         DocumentKind = "pdf"
	KindJPEG        DocumentKind = "jpeg"
	KindPNG         DocumentKind = "png"
	KindUnsupported DocumentKind = "unsupported"
)

// IsImage reports whether the kind is a raw image format.
func (k DocumentKind) IsImage() bool {
	return k == KindJPEG || k == KindPNG
}

// ContentType returns the MIME content type for the kind, or an empty
// string for unsupported kinds.
func (k DocumentKind) ContentType() string {
	switch k {
	case KindPDF:
		return "application/pdf"
	case KindJPEG:
		return "image/jpeg"
	case KindPNG:
		return "image/png"
	default:
		return ""
	}
}

// RiskLevel is the overall vehicle condition risk in an inspection report.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// ValidRiskLevels enumerates the permitted risk_level values. Matching is
// case-sensitive: "low" or "EXTREME" are schema violations, not synonyms.
var ValidRiskLevels = map[RiskLevel]bool{
	RiskLow:      true,
	RiskMedium:   true,
	RiskHigh:     true,
	RiskCritical: true,
}

// AnalysisPath identifies which model modality handled a document.
type AnalysisPath string

const (
	PathText   AnalysisPath = "text"
	PathVision AnalysisPath = "vision"
)

// ExtractionStatus tags the outcome of PDF text extraction.
type ExtractionStatus string

const (
	ExtractionText   ExtractionStatus = "text"
	ExtractionEmpty  ExtractionStatus = "empty"
	ExtractionFailed ExtractionStatus = "failed"
)

// AnalysisStatus records whether the model reply normalized into a valid
// report or came back malformed.
type AnalysisStatus string

const (
	StatusValid     AnalysisStatus = "valid"
	StatusMalformed AnalysisStatus = "malformed"
)
