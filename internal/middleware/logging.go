package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/cyphera/cyphera-xdk/internal/constants"
	"github.com/cyphera/cyphera-xdk/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxLoggedBody caps how much of a body the development logger keeps.
const maxLoggedBody = 16 << 10

// bodyLogWriter is a wrapper around gin.ResponseWriter that captures the response body
type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyLogWriter) Write(b []byte) (int, error) {
	if room := maxLoggedBody - w.body.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		w.body.Write(b[:room])
	}
	return w.ResponseWriter.Write(b)
}

var redactedHeaders = map[string]bool{
	"Authorization": true,
	"X-Api-Key":     true,
	"Cookie":        true,
}

// EnhancedLoggingMiddleware logs request and response bodies in development
// mode and is a no-op otherwise.
func EnhancedLoggingMiddleware(isDevelopment bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isDevelopment {
			c.Next()
			return
		}

		startTime := time.Now()
		log := logger.Log.With(zap.String(constants.CorrelationIDKey, GetCorrelationID(c)))

		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		headers := make(map[string]string)
		for key, values := range c.Request.Header {
			if redactedHeaders[key] {
				headers[key] = "[REDACTED]"
			} else {
				headers[key] = values[0]
			}
		}

		log.Info("Detailed request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Any("headers", headers),
			zap.Any("body", jsonOrNil(c.GetHeader("Content-Type"), requestBody)),
			zap.Int("body_size", len(requestBody)),
		)

		blw := &bodyLogWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		log.Info("Detailed response",
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(startTime)),
			zap.Any("body", jsonOrNil(c.Writer.Header().Get("Content-Type"), blw.body.Bytes())),
			zap.Int("body_size", c.Writer.Size()),
			zap.Int("errors_count", len(c.Errors)),
		)

		for _, err := range c.Errors {
			log.Error("Request error",
				zap.Error(err.Err),
				zap.Uint64("type", uint64(err.Type)),
				zap.Any("meta", err.Meta),
			)
		}
	}
}

// RequestLoggingMiddleware provides basic request logging for production
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		logger.Log.Info("Request completed",
			zap.String(constants.CorrelationIDKey, GetCorrelationID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(startTime)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		)
	}
}

func jsonOrNil(contentType string, body []byte) interface{} {
	if !strings.HasPrefix(contentType, "application/json") || len(body) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	return v
}
