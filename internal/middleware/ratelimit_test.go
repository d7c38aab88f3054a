package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
)

func newLimitedRouter(limit int, now func() time.Time) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{HTTPRateLimit: config.HTTPRateLimitConfig{
		RequestsPerMinute: limit,
		CacheSize:         10,
		CacheTTLSeconds:   int(time.Minute.Seconds()),
	}}

	router := gin.New()
	router.Use(newWindowLimiter(cfg, now).handle)
	router.Any("/api", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func sendFrom(router *gin.Engine, method string, path string, remoteAddr string, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = remoteAddr
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestRateLimit(t *testing.T) {
	router := newLimitedRouter(1, time.Now)

	first := sendFrom(router, http.MethodPost, "/api", "1.2.3.4:1234", "")
	if first.Code != http.StatusOK {
		t.Fatalf("expected ok, got %d", first.Code)
	}
	if first.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("unexpected remaining: %q", first.Header().Get("X-RateLimit-Remaining"))
	}

	second := sendFrom(router, http.MethodPost, "/api", "1.2.3.4:1234", "")
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected rate limit, got %d", second.Code)
	}
}

func TestRateLimitRetryAfterUntilWindowEnd(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 10, 15, 40, 0, time.UTC)
	router := newLimitedRouter(1, func() time.Time { return fixed })

	sendFrom(router, http.MethodPost, "/api", "5.6.7.8:1", "")
	resp := sendFrom(router, http.MethodPost, "/api", "5.6.7.8:1", "")
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected rate limit, got %d", resp.Code)
	}
	if got := resp.Header().Get("Retry-After"); got != "20" {
		t.Fatalf("expected Retry-After 20, got %q", got)
	}
	if got := resp.Header().Get("X-RateLimit-Limit"); got != "1" {
		t.Fatalf("unexpected limit header: %q", got)
	}
}

func TestRateLimitSeparatesAPIKeys(t *testing.T) {
	router := newLimitedRouter(1, time.Now)

	if resp := sendFrom(router, http.MethodPost, "/api", "9.9.9.9:1", "parent-key"); resp.Code != http.StatusOK {
		t.Fatalf("expected ok, got %d", resp.Code)
	}
	if resp := sendFrom(router, http.MethodPost, "/api", "9.9.9.9:1", "school-key"); resp.Code != http.StatusOK {
		t.Fatalf("expected separate budget per key, got %d", resp.Code)
	}
}

func TestRateLimitSkipsPreflightAndUnprotectedPaths(t *testing.T) {
	router := newLimitedRouter(1, time.Now)

	for i := 0; i < 3; i++ {
		if resp := sendFrom(router, http.MethodOptions, "/api", "2.2.2.2:1", ""); resp.Code != http.StatusOK {
			t.Fatalf("preflight %d limited: %d", i, resp.Code)
		}
		if resp := sendFrom(router, http.MethodGet, "/health", "2.2.2.2:1", ""); resp.Code != http.StatusOK {
			t.Fatalf("health %d limited: %d", i, resp.Code)
		}
	}
}

func TestRateLimitDisabled(t *testing.T) {
	router := newLimitedRouter(0, time.Now)
	for i := 0; i < 5; i++ {
		if resp := sendFrom(router, http.MethodPost, "/api", "3.3.3.3:1", ""); resp.Code != http.StatusOK {
			t.Fatalf("expected no limit, got %d", resp.Code)
		}
	}
}
