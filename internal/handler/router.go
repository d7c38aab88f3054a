package handler

import (
	"log/slog"
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/httperror"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/middleware"
)

const defaultServiceName = "neuraplay-ai-proxy"

// NewRouter 는 HTTP 라우터를 구성한다.
// CORS 는 체인 맨 앞에 두어 인증 실패, 제한 초과, 패닉 복구 응답에도 헤더가 붙게 한다.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	taskHandler *TaskHandler,
	healthHandler *HealthHandler,
	usageHandler *UsageHandler,
) *gin.Engine {
	setGinMode(cfg.Logging.Level)

	router := gin.New()
	router.Use(
		middleware.CORS(),
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		gin.CustomRecovery(recoverJSON(logger)),
	)
	if cfg.Telemetry.Enabled {
		serviceName := cfg.Telemetry.ServiceName
		if serviceName == "" {
			serviceName = defaultServiceName
		}
		router.Use(otelgin.Middleware(serviceName))
		logger.Info("otel_http_middleware_enabled", slog.String("service", serviceName))
	}
	router.Use(
		middleware.APIKeyAuth(cfg),
		middleware.RateLimit(cfg),
		// 압축은 Accept-Encoding 을 보낸 클라이언트에만 적용된다.
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", "/health"})),
	)

	healthHandler.RegisterRoutes(router)
	taskHandler.RegisterRoutes(router)
	usageHandler.RegisterRoutes(router)

	return router
}

// recoverJSON 은 패닉을 다른 오류와 같은 JSON 본문으로 응답한다.
func recoverJSON(logger *slog.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		logger.Error("http_panic_recovered",
			slog.String("path", c.Request.URL.Path),
			slog.String("request_id", middleware.GetRequestID(c)),
			slog.Any("panic", recovered),
		)
		writeError(c, httperror.NewPanicRecovered(recovered))
		c.Abort()
	}
}

func setGinMode(level string) {
	if strings.EqualFold(strings.TrimSpace(level), "debug") {
		gin.SetMode(gin.DebugMode)
		return
	}
	gin.SetMode(gin.ReleaseMode)
}
