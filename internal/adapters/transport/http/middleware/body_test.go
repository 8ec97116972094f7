package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestBodyParser(t *testing.T) {
	var calls int
	r := newEngine(BodyParser(64))
	r.POST("/echo", func(c *gin.Context) {
		calls++
		var in map[string]any
		if err := c.ShouldBindJSON(&in); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, in)
	})

	do := func(ct, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do("application/json", `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"email":"a@x.com"}`, w.Body.String())
	require.Equal(t, 1, calls)

	w = do("application/json", `{"email":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"message":"malformed JSON body"}`, w.Body.String())
	require.Equal(t, 1, calls, "handler must not run for malformed JSON")

	w = do("application/json; charset=utf-8", `{"x":"`+strings.Repeat("a", 100)+`"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	require.Equal(t, 1, calls)
}

func TestBodyParser_IgnoresNonJSON(t *testing.T) {
	r := newEngine(BodyParser(1 << 10))
	r.POST("/form", func(c *gin.Context) {
		c.String(http.StatusOK, c.PostForm("name"))
	})

	req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader("name={not json"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "{not json", w.Body.String())
}
