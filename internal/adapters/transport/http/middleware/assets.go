package middleware

import (
	"io"
	"net/http"
	"strings"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/asset"
	"github.com/gin-gonic/gin"
)

// Assets serves GET and HEAD requests under prefix straight from the store and ends
// the chain for them. Other requests pass through untouched.
func Assets(prefix string, store asset.Store) gin.HandlerFunc {
	p := strings.TrimSuffix(prefix, "/") + "/"

	return func(c *gin.Context) {
		m := c.Request.Method
		if (m != http.MethodGet && m != http.MethodHead) || !strings.HasPrefix(c.Request.URL.Path, p) {
			c.Next()
			return
		}
		defer c.Abort()

		name := strings.TrimPrefix(c.Request.URL.Path, p)
		obj, err := store.Open(c.Request.Context(), name)
		if err != nil {
			_ = c.Error(err)
			return
		}
		defer obj.Body.Close()

		if obj.ContentType != "" {
			c.Header("Content-Type", obj.ContentType)
		}
		if rs, ok := obj.Body.(io.ReadSeeker); ok {
			http.ServeContent(c.Writer, c.Request, name, obj.ModTime, rs)
			return
		}
		c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, nil)
	}
}
