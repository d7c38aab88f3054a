package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/handler/shared"
)

// writeError: 에러 응답을 작성합니다 (shared.WriteError 위임).
func writeError(c *gin.Context, err error) {
	shared.WriteError(c, err)
}

// writeContent: 200 콘텐츠 응답을 작성합니다 (shared.WriteContent 위임).
func writeContent(c *gin.Context, payload any) {
	shared.WriteContent(c, payload)
}
