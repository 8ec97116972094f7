package middleware

import (
	"fmt"
	"io"
	"net/http"

	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const GenericMessage = "Something went wrong, please try again later"

// Translate maps an error to the status and client-facing message. Anything it does
// not recognise is a 500 with GenericMessage.
func Translate(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""
	case customErrors.IsInternal(err):
		return http.StatusInternalServerError, GenericMessage
	case customErrors.IsDuplicateUser(err):
		return http.StatusBadRequest, "User already exists"
	case customErrors.IsUserNotFound(err):
		return http.StatusNotFound, "User not found"
	case customErrors.IsInvalidCredentials(err):
		return http.StatusBadRequest, "Invalid credentials"
	case customErrors.IsTokenExpired(err):
		return http.StatusUnauthorized, "Token expired"
	case customErrors.IsTokenInvalid(err):
		return http.StatusUnauthorized, "Invalid token"
	case customErrors.IsAccessDenied(err):
		return http.StatusForbidden, "Access Denied"
	case customErrors.IsRateLimited(err):
		return http.StatusTooManyRequests, "Too many requests"
	case customErrors.IsTooLarge(err):
		return http.StatusRequestEntityTooLarge, "Request entity too large"
	case customErrors.IsBadRequest(err):
		return http.StatusBadRequest, detail(err, customErrors.ErrBadRequest)
	case customErrors.IsNotFound(err):
		return http.StatusNotFound, detail(err, customErrors.ErrNotFound)
	default:
		return http.StatusInternalServerError, GenericMessage
	}
}

// detail strips the "<sentinel>: " prefix added by NewBadRequest/NewNotFound.
func detail(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

// ErrorHandler is the outermost stage. Handlers and inner stages record failures with
// c.Error and stop; this stage renders the last one as {"message": ...}.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status, msg := Translate(err)

		if status >= http.StatusInternalServerError {
			log.Error("unexpected error",
				zap.Error(err),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
			)
		}

		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(status, gin.H{"message": msg})
	}
}

// Recovery turns a panic into an ordinary error for ErrorHandler.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		log.Error("panic recovered",
			zap.Any("panic", rec),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"),
		)
		_ = c.Error(fmt.Errorf("panic: %v", rec))
		c.Abort()
	})
}

// ResponseStatus is the status the client will see, including errors that
// ErrorHandler has not rendered yet.
func ResponseStatus(c *gin.Context) int {
	if !c.Writer.Written() && len(c.Errors) > 0 {
		status, _ := Translate(c.Errors.Last().Err)
		return status
	}
	return c.Writer.Status()
}
