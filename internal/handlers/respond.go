package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finkit/gl_ledger_app/internal/apperrors"
	"github.com/finkit/gl_ledger_app/internal/core/domain"
	"github.com/finkit/gl_ledger_app/internal/dto"
	"github.com/finkit/gl_ledger_app/internal/middleware"
)

// respondError maps the error taxonomy onto HTTP status codes and writes a
// machine-readable error body. Internal failures are logged but never leak
// their details to the client.
func respondError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	status := http.StatusInternalServerError
	message := "internal server error"
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
		message = "resource not found"
	case errors.Is(err, apperrors.ErrConflict):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, apperrors.ErrPrecondition):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, apperrors.ErrUnavailable):
		status = http.StatusServiceUnavailable
		message = "service temporarily unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		message = "request deadline exceeded; outcome unknown, retry with the same idempotency token"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", slog.Int("status", status), slog.String("error", err.Error()))
	} else {
		logger.Warn("Request rejected", slog.Int("status", status), slog.String("error", err.Error()))
	}
	c.JSON(status, dto.ErrorResponse{Error: message, Code: apperrors.CodeOf(err)})
}

// mustPrincipal pulls the authenticated caller from the context; it aborts
// with 401 when the auth middleware never ran.
func mustPrincipal(c *gin.Context) (domain.Principal, bool) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
		return domain.Principal{}, false
	}
	return principal, true
}
