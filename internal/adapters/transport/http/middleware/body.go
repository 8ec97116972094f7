package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/gin-gonic/gin"
)

// BodyParser caps every request body at limit bytes. JSON bodies are read eagerly and
// rejected before any handler runs when they do not parse.
func BodyParser(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

		if !isJSON(c.ContentType()) {
			c.Next()
			return
		}

		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				_ = c.Error(customErrors.ErrTooLarge)
			} else {
				_ = c.Error(customErrors.NewBadRequest("cannot read request body"))
			}
			c.Abort()
			return
		}

		if len(bytes.TrimSpace(raw)) > 0 && !json.Valid(raw) {
			_ = c.Error(customErrors.NewBadRequest("malformed JSON body"))
			c.Abort()
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		c.Set(gin.BodyBytesKey, raw)
		c.Next()
	}
}

func isJSON(contentType string) bool {
	return contentType == "application/json" || strings.HasSuffix(contentType, "+json")
}
