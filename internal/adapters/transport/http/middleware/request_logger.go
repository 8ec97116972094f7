package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger writes one access line per request. Bodies are never logged, so
// passwords and emails stay out of the log.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// без токенов и cookies: всё, что похоже на секрет, вычищаем
		scrub := func(h http.Header) http.Header {
			clone := h.Clone()
			for k := range clone {
				lk := strings.ToLower(k)
				if strings.Contains(lk, "authorization") || strings.Contains(lk, "cookie") {
					clone[k] = []string{"[redacted]"}
				}
			}
			return clone
		}

		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(RequestIDHeader, reqID)

		if ce := log.Check(zap.DebugLevel, "incoming request"); ce != nil {
			reqHeaders, _ := json.Marshal(scrub(c.Request.Header))
			ce.Write(
				zap.String("request_id", reqID),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.ByteString("hdr", reqHeaders),
			)
		}

		ts := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", reqID),
			zap.String("remote", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", ResponseStatus(c)),
			zap.Int("size", c.Writer.Size()),
			zap.Duration("latency", time.Since(ts)),
			zap.String("user_agent", c.Request.UserAgent()),
		}

		// прерванные с ошибкой (CORS, лимиты, тело) отмечаем отдельно; отданные ассеты тоже abort, но это успех
		if c.IsAborted() && ResponseStatus(c) >= http.StatusBadRequest {
			log.Warn("aborted", fields...)
			return
		}
		log.Info("completed", fields...)
	}
}
