package shared

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/httperror"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/middleware"
)

// WriteError 는 프로토콜 수준 에러 응답을 작성한다.
func WriteError(c *gin.Context, err error) {
	if c == nil {
		return
	}
	status, payload := httperror.Response(err, middleware.GetRequestID(c))
	c.JSON(status, payload)
}

// WriteContent 는 콘텐츠 수준 결과를 작성한다.
// 폴백, 차단, 공급자 실패도 모두 본문 필드로 표현하므로 상태 코드는 항상 200 이다.
func WriteContent(c *gin.Context, payload any) {
	if c == nil {
		return
	}
	c.JSON(http.StatusOK, payload)
}

// WriteEmpty 는 본문 없는 200 응답을 작성한다 (preflight 용).
func WriteEmpty(c *gin.Context) {
	if c == nil {
		return
	}
	c.Status(http.StatusOK)
}
