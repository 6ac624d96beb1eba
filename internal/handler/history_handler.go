package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"scanno/internal/export"
	"scanno/internal/service"
)

const exportBatchLimit = 10000

// HistoryHandler serves persisted analysis records.
type HistoryHandler struct {
	svc service.AnalysisService
}

func NewHistoryHandler(svc service.AnalysisService) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

// List handles GET /api/v1/analyses with offset/limit pagination.
func (h *HistoryHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	analyses, total, err := h.svc.ListAnalyses(c.Request.Context(), offset, limit)
	if err != nil {
		log.Printf("historyHandler.List: %v", err)
		MapDomainError(c, err)
		return
	}

	RespondPaginated(c, analyses, PageMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/analyses/:id.
func (h *HistoryHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "Analysis ID must be a valid UUID.")
		return
	}

	analysis, err := h.svc.GetAnalysis(c.Request.Context(), id)
	if err != nil {
		MapDomainError(c, err)
		return
	}

	RespondOK(c, analysis)
}

// Export handles GET /api/v1/analyses/export?format=xlsx|csv and streams
// the full history as a spreadsheet download.
func (h *HistoryHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "xlsx")
	if format != "xlsx" && format != "csv" {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "Format must be 'xlsx' or 'csv'.")
		return
	}

	analyses, _, err := h.svc.ListAnalyses(c.Request.Context(), 0, exportBatchLimit)
	if err != nil {
		log.Printf("historyHandler.Export: %v", err)
		MapDomainError(c, err)
		return
	}

	filename := fmt.Sprintf("analyses_%s.%s", time.Now().UTC().Format("20060102_150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	switch format {
	case "xlsx":
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = export.WriteXLSX(c.Writer, analyses)
	case "csv":
		c.Header("Content-Type", "text/csv; charset=utf-8")
		err = export.WriteCSV(c.Writer, analyses)
	}
	if err != nil {
		log.Printf("historyHandler.Export: writing %s: %v", format, err)
	}
}
