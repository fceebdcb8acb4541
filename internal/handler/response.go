package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"freelance/internal/repository"
	"freelance/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status
// code. Unexpected errors are collapsed into a generic message so internal
// details never reach the caller.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(code, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrNoProjects):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidProjectID),
		errors.Is(err, service.ErrInvalidPaymentID),
		errors.Is(err, service.ErrInvalidPaymentAmount),
		errors.Is(err, service.ErrInvalidCurrency),
		errors.Is(err, service.ErrInvalidPaymentStatus),
		errors.Is(err, service.ErrMissingProjectFields),
		errors.Is(err, service.ErrEmptyProjectUpdate),
		errors.Is(err, service.ErrInvalidProjectStatus),
		errors.Is(err, service.ErrMissingUserFields),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrInvalidResetToken),
		errors.Is(err, service.ErrEmptyImport),
		errors.Is(err, service.ErrWebhookSignature):
		return http.StatusBadRequest

	// Authentication failures
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Upstream failures
	case errors.Is(err, service.ErrPaymentProcessor):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}
