package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/health"
)

// HealthHandler: 상태 확인 핸들러입니다.
type HealthHandler struct {
	checker *health.Checker
}

// NewHealthHandler: 상태 확인 핸들러를 생성합니다.
func NewHealthHandler(checker *health.Checker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// RegisterRoutes: 상태 확인 라우트를 등록합니다.
func (h *HealthHandler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/health", func(c *gin.Context) {
		// Liveness: 외부 저장소 상태로 인해 다운 판정되지 않도록 shallow로 유지합니다.
		c.JSON(http.StatusOK, h.checker.Collect(c.Request.Context(), false))
	})

	router.GET("/health/ready", func(c *gin.Context) {
		payload := h.checker.Collect(c.Request.Context(), true)
		status := http.StatusOK
		if !payload.Ready() {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, payload)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
