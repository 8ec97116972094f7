package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type authStub map[string]string

func (a authStub) Authenticate(token string) (string, error) {
	switch token {
	case "expired":
		return "", customErrors.ErrTokenExpired
	}
	id, ok := a[token]
	if !ok {
		return "", customErrors.ErrTokenInvalid
	}
	return id, nil
}

func TestRequireAuth(t *testing.T) {
	r := newEngine(RequireAuth(authStub{"good": "user-1"}))
	r.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, UserID(c)) })

	cases := []struct {
		header string
		status int
		body   string
	}{
		{"", http.StatusForbidden, `{"message":"Access Denied"}`},
		{"Bearer good", http.StatusOK, "user-1"},
		{"good", http.StatusOK, "user-1"},
		{"bearer good", http.StatusOK, "user-1"},
		{"Bearer expired", http.StatusUnauthorized, `{"message":"Token expired"}`},
		{"Bearer forged", http.StatusUnauthorized, `{"message":"Invalid token"}`},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, tc.status, w.Code, tc.header)
		if tc.status == http.StatusOK {
			require.Equal(t, tc.body, w.Body.String())
		} else {
			require.JSONEq(t, tc.body, w.Body.String())
		}
	}
}
