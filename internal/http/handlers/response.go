// Package handlers implements the HTTP endpoints of the contact backend.
//
// Every failure answers with ErrorResponse, or ValidationErrorResponse when
// form fields were rejected, so the site script can show Message next to the
// form and quote RequestID when a visitor reports a problem:
//
//	HTTP/1.1 409 Conflict
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "capacity_exceeded",
//	  "message": "You have reached the maximum number of submissions (3). ..."
//	}
package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-contact-backend/internal/http/middleware"
)

const requestIDHeader = "X-Request-ID"

// ErrorResponse is the error envelope of every endpoint.
type ErrorResponse struct {
	// Echo of X-Request-ID
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable machine-readable code, see errors.go
	Code string `json:"code" example:"not_found"`
	// Message safe to show to the visitor
	Message string `json:"message" example:"resource not found"`
}

// ValidationErrorResponse is the 422 envelope carrying one message per
// invalid form field.
type ValidationErrorResponse struct {
	ErrorResponse
	Fields map[string]string `json:"fields"`
}

func envelope(c *gin.Context, code, msg string) ErrorResponse {
	return ErrorResponse{
		RequestID: c.Writer.Header().Get(requestIDHeader),
		Code:      code,
		Message:   msg,
	}
}

// fail aborts with the error envelope. Server-side failures are logged on
// the request logger; client errors are left to the access log.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("route", c.FullPath()).
			Msg(msg)
	}
	c.AbortWithStatusJSON(status, envelope(c, code, msg))
}

// Fail lets the router answer NoRoute and NoMethod with the same envelope.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failValidation aborts with 422. Only the names of the rejected fields are
// logged; their values are visitor PII.
func failValidation(c *gin.Context, msg string, fields map[string]string) {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	middleware.LoggerFrom(c).Info().Strs("fields", names).Msg("submission rejected")

	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
		ErrorResponse: envelope(c, ErrCodeValidationFailed, msg),
		Fields:        fields,
	})
}

func ok(c *gin.Context, status int, body any) { c.JSON(status, body) }

func noContent(c *gin.Context) { c.Status(http.StatusNoContent) }
