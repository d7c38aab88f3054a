package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
)

func TestCORSHeadersOnEveryResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{HTTPAuth: config.HTTPAuthConfig{APIKey: "secret"}}

	router := gin.New()
	router.Use(CORS(), gin.Recovery(), APIKeyAuth(cfg))
	router.GET("/public", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/panic", func(*gin.Context) { panic("boom") })
	router.POST("/api", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{name: "plain", method: http.MethodGet, path: "/public", status: http.StatusOK},
		{name: "recovered panic", method: http.MethodGet, path: "/panic", status: http.StatusInternalServerError},
		{name: "unauthorized", method: http.MethodPost, path: "/api", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, httptest.NewRequest(tt.method, tt.path, nil))
			if resp.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.Code)
			}
			if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Fatalf("expected wildcard origin, got %q", got)
			}
		})
	}
}
