package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// TaskTypeKey 는 태스크 핸들러가 해석한 task_type 을 요청 로그에 넘기는 컨텍스트 키다.
const TaskTypeKey = "task_type"

// RequestLogger 는 요청마다 http_request 이벤트를 남긴다.
// 2xx/3xx 는 debug, 4xx 는 warn, 5xx 는 error 레벨이다. 성공한 preflight 와 health/metrics 는 남기지 않는다.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return func(c *gin.Context) {
		startedAt := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		failed := status >= http.StatusBadRequest || len(c.Errors) > 0
		if !failed && (method == http.MethodOptions || isQuietPath(path)) {
			return
		}

		attrs := []slog.Attr{
			slog.String("request_id", GetRequestID(c)),
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(startedAt)),
			slog.Int("bytes", c.Writer.Size()),
			slog.String("client_ip", c.ClientIP()),
		}
		if taskType := c.GetString(TaskTypeKey); taskType != "" {
			attrs = append(attrs, slog.String("task_type", taskType))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}
		logger.LogAttrs(context.Background(), levelForStatus(status), "http_request", attrs...)
	}
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelDebug
	}
}

func isQuietPath(path string) bool {
	switch path {
	case "/health", "/health/ready", "/metrics":
		return true
	}
	return false
}
