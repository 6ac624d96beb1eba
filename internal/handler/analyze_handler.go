package handler

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"scanno/internal/domain"
	"scanno/internal/service"
)

// AnalyzeHandler accepts inspection documents and returns their analysis.
type AnalyzeHandler struct {
	svc            service.AnalysisService
	maxUploadBytes int64
}

func NewAnalyzeHandler(svc service.AnalysisService, maxFileSizeMB int64) *AnalyzeHandler {
	return &AnalyzeHandler{
		svc:            svc,
		maxUploadBytes: maxFileSizeMB * 1024 * 1024,
	}
}

// Analyze handles POST /api/v1/analyses. It takes a single multipart file
// field and responds with {"file": <name>, "report": <report or fallback>}.
// A malformed model reply is still a 200: the fallback object is the report.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "Request must include a 'file' form field.")
		return
	}

	if fileHeader.Size > h.maxUploadBytes {
		MapDomainError(c, domain.ErrFileTooLarge)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		log.Printf("analyzeHandler.Analyze: opening upload %s: %v", fileHeader.Filename, err)
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "Could not read the uploaded file.")
		return
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		log.Printf("analyzeHandler.Analyze: reading upload %s: %v", fileHeader.Filename, err)
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "Could not read the uploaded file.")
		return
	}
	if len(data) == 0 {
		MapDomainError(c, domain.ErrEmptyUpload)
		return
	}

	result, err := h.svc.Analyze(c.Request.Context(), service.AnalyzeInput{
		Filename: fileHeader.Filename,
		Data:     data,
	})
	if err != nil {
		log.Printf("analyzeHandler.Analyze: %s: %v", fileHeader.Filename, err)
		MapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
