package middleware

import (
	"context"

	"github.com/cyphera/cyphera-xdk/internal/constants"
	"github.com/cyphera/cyphera-xdk/internal/logger"
	"github.com/cyphera/cyphera-xdk/pkg/xid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	CorrelationIDHeader = constants.CorrelationIDHeader
	correlationIDKey    = "correlationID"

	// maxCorrelationIDLength bounds client-supplied ids.
	maxCorrelationIDLength = 128
)

// CorrelationIDMiddleware ensures every request has a correlation ID. A
// client-supplied header is kept; otherwise newID is called, defaulting to a
// fresh XID.
func CorrelationIDMiddleware(newID func() string) gin.HandlerFunc {
	if newID == nil {
		newID = func() string { return xid.New().String() }
	}

	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" || len(correlationID) > maxCorrelationIDLength {
			correlationID = newID()
		}

		c.Set(correlationIDKey, correlationID)
		c.Header(CorrelationIDHeader, correlationID)

		ctx := WithCorrelationID(c.Request.Context(), correlationID)
		ctx = logger.ToContext(ctx, logger.Log.With(zap.String(constants.CorrelationIDKey, correlationID)))
		c.Request = c.Request.WithContext(ctx)

		logger.Log.Debug("Request received",
			zap.String(constants.CorrelationIDKey, correlationID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
		)

		c.Next()
	}
}

// GetCorrelationID retrieves the correlation ID from the Gin context
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(correlationIDKey)
}

type contextKey string

const correlationIDContextKey contextKey = "correlationID"

// WithCorrelationID adds correlation ID to context
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDContextKey, correlationID)
}

// CorrelationIDFromContext retrieves correlation ID from context
func CorrelationIDFromContext(ctx context.Context) string {
	if correlationID, ok := ctx.Value(correlationIDContextKey).(string); ok {
		return correlationID
	}
	return ""
}
