package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"scanno/internal/domain"
)

// APIResponse is the standard envelope for history and export endpoints.
// The analyze endpoint returns its result object directly instead, since
// its shape ({"file": ..., "report": ...}) is a wire contract of its own.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PageMeta   `json:"meta,omitempty"`
}

// APIError carries a machine-readable code and a human-readable message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PageMeta carries pagination info for list endpoints.
type PageMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

func RespondPaginated(c *gin.Context, data interface{}, meta PageMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

func RespondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, APIResponse{Success: false, Error: &APIError{Code: code, Message: message}})
}

// MapDomainError translates pipeline errors to HTTP responses.
func MapDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedDocument):
		RespondError(c, http.StatusBadRequest, "UNSUPPORTED_DOCUMENT", "Unsupported file type. Upload a PDF, JPEG or PNG document.")
	case errors.Is(err, domain.ErrEmptyUpload):
		RespondError(c, http.StatusBadRequest, "EMPTY_UPLOAD", "Uploaded file is empty.")
	case errors.Is(err, domain.ErrFileTooLarge):
		RespondError(c, http.StatusBadRequest, "FILE_TOO_LARGE", "File exceeds the maximum allowed size.")
	case errors.Is(err, domain.ErrNotFound):
		RespondError(c, http.StatusNotFound, "NOT_FOUND", "Analysis not found.")
	default:
		RespondError(c, http.StatusInternalServerError, "ANALYSIS_FAILED", "Analysis failed. Please try again later.")
	}
}
