package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRequestIDGenerated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	g.Use(RequestIDMiddleware())
	g.GET("/", func(c *gin.Context) {
		require.NotEmpty(t, RequestID(c))
		c.Status(http.StatusOK)
	})

	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rw.Code)
	require.NotEmpty(t, rw.Header().Get("X-Request-ID"))
}

func TestRequestIDPreserved(t *testing.T) {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	g.Use(RequestIDMiddleware())
	g.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-42")
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)

	require.Equal(t, "upstream-42", rw.Header().Get("X-Request-ID"))
}

func TestRequestIDMissing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	require.Empty(t, RequestID(c))
}
