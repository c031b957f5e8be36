package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/evrlink/evrlink-mirror/internal/api/shared/errors"
	"github.com/evrlink/evrlink-mirror/internal/logger"
)

// statusByCode maps API error codes to HTTP statuses
var statusByCode = map[errors.ErrorCode]int{
	errors.ErrCodeBadRequest:        http.StatusBadRequest,
	errors.ErrCodeValidationFailed:  http.StatusBadRequest,
	errors.ErrCodeNotFound:          http.StatusNotFound,
	errors.ErrCodeUnauthorized:      http.StatusUnauthorized,
	errors.ErrCodeForbidden:         http.StatusForbidden,
	errors.ErrCodeIncorrectPrice:    http.StatusUnprocessableEntity,
	errors.ErrCodeInvalidSecret:     http.StatusUnprocessableEntity,
	errors.ErrCodeInsufficientFunds: http.StatusUnprocessableEntity,
	errors.ErrCodeLedgerRejected:    http.StatusConflict,
	errors.ErrCodeEventNotFound:     http.StatusBadGateway,
	errors.ErrCodeLedgerTimeout:     http.StatusAccepted,
	errors.ErrCodeNetworkFault:      http.StatusServiceUnavailable,
	errors.ErrCodeDatabaseError:     http.StatusInternalServerError,
	errors.ErrCodeServiceError:      http.StatusInternalServerError,
	errors.ErrCodeInternalError:     http.StatusInternalServerError,
}

// respondError responds with the API error derived from err
func respondError(c *gin.Context, err error) {
	apiErr := errors.FromDomainError(err)

	status, ok := statusByCode[apiErr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		logger.ErrorCtx(c.Request.Context(), err,
			zap.String("path", c.Request.URL.Path),
			zap.String("code", string(apiErr.Code)))
	}

	c.JSON(status, apiErr)
}

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, errors.NewBadRequestError(message, details...))
}

// respondNotFound responds with a not found error
func respondNotFound(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusNotFound, errors.NewNotFoundError(message, details...))
}

// respondValidationError responds with a validation error
func respondValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errors.NewValidationError(message))
}

// respondUnauthorized responds with an authentication error
func respondUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, errors.NewUnauthorizedError(message))
}
