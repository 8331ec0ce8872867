package handlers

import (
	"errors"
	"net/http"

	"github.com/cyphera/cyphera-xdk/internal/logger"
	"github.com/cyphera/cyphera-xdk/internal/middleware"
	"github.com/cyphera/cyphera-xdk/internal/services"
	"github.com/cyphera/cyphera-xdk/pkg/ethtx"
	"github.com/cyphera/cyphera-xdk/pkg/rlp"
	"github.com/cyphera/cyphera-xdk/pkg/xid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// badRequestErrors are caller mistakes rather than server faults.
var badRequestErrors = []error{
	xid.ErrInvalidLength,
	xid.ErrDecodeValidation,
	rlp.ErrMalformed,
	rlp.ErrExpectedString,
	rlp.ErrExpectedList,
	ethtx.ErrUnsupportedTransactionType,
	ethtx.ErrMissingFeeFields,
	ethtx.ErrValueOutOfRange,
	ethtx.ErrUnknownChain,
	ethtx.ErrInvalidAddress,
	services.ErrInvalidBatchSize,
}

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	switch {
	case errors.Is(err, services.ErrPublishingDisabled), errors.Is(err, services.ErrBroadcastDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrDeliveryFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// sendDomainError picks the status for err. Client errors carry their
// message; server errors are reported with the generic message only.
func sendDomainError(c *gin.Context, message string, err error) {
	status := statusForError(err)
	if status == http.StatusBadRequest {
		message = message + ": " + err.Error()
	}
	sendError(c, status, message, err)
}

// sendError logs the failure and writes an ErrorResponse.
func sendError(c *gin.Context, statusCode int, message string, err error) {
	correlationID := middleware.GetCorrelationID(c)

	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", statusCode),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("correlation_id", correlationID),
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error(message, fields...)
	} else {
		logger.Warn(message, fields...)
	}

	c.JSON(statusCode, ErrorResponse{
		Error:         message,
		CorrelationID: correlationID,
	})
}

func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}
