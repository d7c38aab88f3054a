package middleware

import (
	"github.com/gin-gonic/gin"
)

const (
	corsAllowHeaders = "Content-Type, Authorization, X-API-Key, X-Request-ID"
	corsAllowMethods = "GET, POST, OPTIONS"
)

// CORS 는 모든 응답에 와일드카드 CORS 헤더를 붙인다.
// 체인 맨 앞에서 실행되어 인증 실패나 패닉 복구 응답에도 헤더가 남는다.
// Origin 헤더가 없는 요청에도 동일하게 적용한다.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		header.Set("Access-Control-Allow-Methods", corsAllowMethods)
		c.Next()
	}
}
