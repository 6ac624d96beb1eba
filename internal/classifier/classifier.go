// Package classifier decides which extraction path applies to an upload.
package classifier

import (
	"path/filepath"
	"strings"

	"scanno/internal/domain"
)

// Classify inspects an uploaded payload's declared filename and returns its
// media kind. Only the extension is consulted (case-insensitive); the byte
// payload is carried for signature checks by later stages and may be empty
// here. Unsupported extensions are a valid output value, not an error;
// the boundary decides whether that is fatal.
func Classify(filename string, data []byte) domain.DocumentKind {
	_ = data

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return domain.KindPDF
	case ".jpg", ".jpeg":
		return domain.KindJPEG
	case ".png":
		return domain.KindPNG
	default:
		return domain.KindUnsupported
	}
}
