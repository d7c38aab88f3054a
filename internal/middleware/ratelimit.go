package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/cache"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/httperror"
)

const rateLimitWindow = time.Minute

// windowLimiter 는 호출자별 1분 고정 윈도 카운터다.
type windowLimiter struct {
	limit   int
	counter *cache.TTLCache[string, int]
	now     func() time.Time
}

// RateLimit 는 태스크 경로에 호출자별 분당 요청 제한을 건다. 0 이하면 제한하지 않는다.
// 응답에는 X-RateLimit-Limit/Remaining 이 붙고, 초과 시 Retry-After 와 함께 429 를 반환한다.
func RateLimit(cfg *config.Config) gin.HandlerFunc {
	return newWindowLimiter(cfg, time.Now).handle
}

func newWindowLimiter(cfg *config.Config, now func() time.Time) *windowLimiter {
	limiter := &windowLimiter{now: now}
	if cfg == nil {
		return limiter
	}
	limiter.limit = cfg.HTTPRateLimit.RequestsPerMinute
	limiter.counter = cache.NewTTLCache[string, int](
		cfg.HTTPRateLimit.CacheSize,
		time.Duration(cfg.HTTPRateLimit.CacheTTLSeconds)*time.Second,
	)
	return limiter
}

func (l *windowLimiter) handle(c *gin.Context) {
	if l.limit <= 0 || c.Request.Method == http.MethodOptions || !shouldProtectPath(c.Request.URL.Path) {
		c.Next()
		return
	}

	identity := callerIdentity(c)
	now := l.now()
	window := now.Unix() / int64(rateLimitWindow.Seconds())
	key := identity + ":" + strconv.FormatInt(window, 10)

	count, ok := l.counter.Modify(key, func(current int, _ bool) int { return current + 1 })
	if !ok {
		c.Next()
		return
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(l.limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(max(l.limit-count, 0)))
	if count <= l.limit {
		c.Next()
		return
	}

	retryAfter := int64(rateLimitWindow.Seconds()) - now.Unix()%int64(rateLimitWindow.Seconds())
	c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
	status, payload := httperror.Response(httperror.NewRateLimitExceeded(map[string]any{
		"path":                c.Request.URL.Path,
		"identity":            identity,
		"limit_per_minute":    l.limit,
		"retry_after_seconds": retryAfter,
	}), GetRequestID(c))
	c.AbortWithStatusJSON(status, payload)
}

// callerIdentity 는 API 키가 있으면 키 해시로, 없으면 클라이언트 IP 로 호출자를 구분한다.
func callerIdentity(c *gin.Context) string {
	if key := extractAPIKey(c); key != "" {
		sum := sha256.Sum256([]byte(key))
		return "key:" + hex.EncodeToString(sum[:8])
	}
	if ip := c.ClientIP(); ip != "" {
		return "ip:" + ip
	}
	return "ip:unknown"
}
