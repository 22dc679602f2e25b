package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/resumeai/internal/llm"
	"github.com/jmylchreest/resumeai/internal/service"
	"github.com/jmylchreest/resumeai/internal/templatecode"
)

// GenerationErrorResponse is the error body of a failed generation call.
// It implements huma.StatusError so handlers can return it directly.
type GenerationErrorResponse struct {
	Status         int    `json:"status"`
	Title          string `json:"title"`
	Detail         string `json:"detail"`
	Code           string `json:"code"`
	ProviderStatus int    `json:"provider_status,omitempty"`
	Category       string `json:"category,omitempty"`
}

func (e *GenerationErrorResponse) Error() string {
	return e.Detail
}

// GetStatus returns the HTTP status code.
func (e *GenerationErrorResponse) GetStatus() int {
	return e.Status
}

// NewGenerationErrorResponse converts a tagged generation error.
func NewGenerationErrorResponse(genErr *service.GenerationError) *GenerationErrorResponse {
	status := generationStatus(genErr)
	return &GenerationErrorResponse{
		Status:         status,
		Title:          http.StatusText(status),
		Detail:         genErr.Message,
		Code:           genErr.Code,
		ProviderStatus: genErr.ProviderStatus,
		Category:       genErr.Category,
	}
}

// generationStatus maps a generation error code to the response status.
// Provider failures are reported as 502 so the client can tell them apart
// from its own mistakes.
func generationStatus(genErr *service.GenerationError) int {
	switch genErr.Code {
	case service.CodeMissingCredential:
		return http.StatusPreconditionFailed
	case service.CodeInvalidTemplateStructure, service.CodeValidationSyntax:
		return http.StatusUnprocessableEntity
	case service.CodeEmptyResponse:
		return http.StatusBadGateway
	}
	if genErr.Category == "timeout" {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

// toHumaError maps service errors to HTTP errors. Unexpected errors are
// logged and reported without detail.
func toHumaError(logger *slog.Logger, op string, err error) error {
	var tmplErr *templatecode.Error
	switch {
	case errors.Is(err, service.ErrNotFound):
		return huma.Error404NotFound(op + ": not found")
	case errors.Is(err, service.ErrInvalidInput):
		return huma.Error400BadRequest(err.Error())
	case errors.As(err, &tmplErr):
		return huma.Error422UnprocessableEntity(tmplErr.Error())
	case errors.Is(err, service.ErrLimitReached):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, llm.ErrMissingCredential):
		return huma.Error412PreconditionFailed("no AI credential configured")
	case errors.Is(err, llm.ErrModelUnavailable):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, service.ErrStorageDisabled):
		return huma.Error503ServiceUnavailable("snapshots are not available on this server")
	}

	logger.Error(op+" failed", "error", err)
	return huma.Error500InternalServerError(op + " failed")
}
