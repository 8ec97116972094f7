package middleware

import (
	"strings"

	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

type Authenticator interface {
	Authenticate(token string) (userID string, err error)
}

// RequireAuth accepts "Authorization: Bearer <token>" as well as a bare token.
func RequireAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader("Authorization"))
		if token == "" {
			_ = c.Error(customErrors.ErrAccessDenied)
			c.Abort()
			return
		}
		if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
			token = strings.TrimSpace(token[7:])
		}

		userID, err := a.Authenticate(token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
