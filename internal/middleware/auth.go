package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/httperror"
)

// NetlifyFunctionPath 는 서버리스 배포 시절 클라이언트가 쓰던 태스크 엔드포인트 경로다.
const NetlifyFunctionPath = "/.netlify/functions/api"

// APIKeyAuth 는 API 키 인증 미들웨어다. 키가 비어 있으면 모든 요청을 통과시킨다.
// preflight(OPTIONS) 는 브라우저가 키를 붙이지 않으므로 검사하지 않는다.
func APIKeyAuth(cfg *config.Config) gin.HandlerFunc {
	expected := ""
	if cfg != nil {
		expected = strings.TrimSpace(cfg.HTTPAuth.APIKey)
	}

	return func(c *gin.Context) {
		if expected == "" {
			c.Next()
			return
		}

		if c.Request.Method == http.MethodOptions || !shouldProtectPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		provided := extractAPIKey(c)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			details := map[string]any{"path": c.Request.URL.Path}
			status, payload := httperror.Response(httperror.NewUnauthorized(details), GetRequestID(c))
			c.AbortWithStatusJSON(status, payload)
			return
		}

		c.Next()
	}
}

func extractAPIKey(c *gin.Context) string {
	if c == nil {
		return ""
	}

	value := strings.TrimSpace(c.GetHeader("X-API-Key"))
	if value != "" {
		return value
	}

	authValue := strings.TrimSpace(c.GetHeader("Authorization"))
	if authValue == "" {
		return ""
	}

	if strings.HasPrefix(strings.ToLower(authValue), "bearer ") {
		token := strings.TrimSpace(authValue[7:])
		return token
	}

	return ""
}

// shouldProtectPath: 태스크 엔드포인트와 /api 하위 경로만 보호합니다.
func shouldProtectPath(path string) bool {
	switch {
	case path == "/api", path == NetlifyFunctionPath:
		return true
	default:
		return strings.HasPrefix(path, "/api/")
	}
}
