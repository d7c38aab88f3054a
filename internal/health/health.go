package health

import (
	"context"
	"time"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
)

// 구성 요소 상태 값
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusDown     = "down"
)

const deepCheckTimeout = 2 * time.Second

// Pinger 는 연결 상태를 확인할 수 있는 저장소다.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Component 는 상태 구성 요소다.
type Component struct {
	Status string         `json:"status"`
	Detail map[string]any `json:"detail"`
}

// Response 는 상태 응답 본문이다.
type Response struct {
	Status     string               `json:"status"`
	Components map[string]Component `json:"components"`
}

// Ready 는 트래픽을 받아도 되는 상태인지 반환한다.
// 토큰이 없어도 폴백 응답은 가능하므로 degraded 는 준비 완료로 본다.
func (r Response) Ready() bool {
	return r.Status != StatusDown
}

// StatsSource 는 프로세스 내 호출 통계를 제공한다.
type StatsSource interface {
	Snapshot() map[string]float64
}

// Dependencies 는 깊은 검사 대상이다. 비활성화된 저장소는 nil 로 둔다.
type Dependencies struct {
	ImageCache Pinger
	UsageDB    Pinger
	Stats      StatsSource
}

// Checker 는 프록시 상태를 수집한다.
type Checker struct {
	cfg       *config.Config
	deps      Dependencies
	startedAt time.Time
}

// NewChecker 는 Checker 를 생성한다.
func NewChecker(cfg *config.Config, deps Dependencies) *Checker {
	return &Checker{cfg: cfg, deps: deps, startedAt: time.Now()}
}

// Collect 는 헬스 상태를 수집한다. deepChecks 가 false 면 외부 저장소에 접속하지 않는다.
func (h *Checker) Collect(ctx context.Context, deepChecks bool) Response {
	if ctx == nil {
		ctx = context.Background()
	}

	components := map[string]Component{
		"app":       h.appStatus(),
		"providers": h.providerStatus(),
	}

	imageCacheEnabled := h.cfg != nil && h.cfg.ImageCache.Enabled
	components["image_cache"] = storeStatus(ctx, h.deps.ImageCache, imageCacheEnabled, deepChecks)

	usageEnabled := h.cfg != nil && h.cfg.Database.Enabled
	components["usage_db"] = storeStatus(ctx, h.deps.UsageDB, usageEnabled, deepChecks)

	if h.deps.Stats != nil {
		components["upstream"] = statsStatus(h.deps.Stats.Snapshot())
	}

	return Response{
		Status:     overallStatus(components),
		Components: components,
	}
}

func (h *Checker) appStatus() Component {
	return Component{
		Status: StatusOK,
		Detail: map[string]any{
			"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
		},
	}
}

func (h *Checker) providerStatus() Component {
	if h.cfg == nil {
		return Component{Status: StatusDegraded, Detail: map[string]any{}}
	}

	chatToken := config.EnvToken(h.cfg.Provider.TokenEnv)() != ""
	voiceToken := config.EnvToken(h.cfg.Voice.TokenEnv)() != ""
	status := StatusOK
	if !chatToken || !voiceToken {
		status = StatusDegraded
	}

	return Component{
		Status: status,
		Detail: map[string]any{
			"chat_token_present":  chatToken,
			"voice_token_present": voiceToken,
			"chat_model":          h.cfg.Provider.ChatModel,
			"safety_backend":      h.cfg.Safety.Backend,
			"image_models":        len(h.cfg.Provider.ImageCandidates),
		},
	}
}

// statsStatus 는 누적 통계를 그대로 노출한다. 호출 실패율은 판정에 쓰지 않는다.
func statsStatus(snapshot map[string]float64) Component {
	detail := make(map[string]any, len(snapshot))
	for key, value := range snapshot {
		detail[key] = value
	}
	return Component{Status: StatusOK, Detail: detail}
}

func storeStatus(ctx context.Context, store Pinger, enabled bool, deepChecks bool) Component {
	detail := map[string]any{
		"enabled":      enabled,
		"deep_checked": deepChecks,
	}
	if !enabled {
		return Component{Status: StatusOK, Detail: detail}
	}
	if store == nil {
		detail["error"] = "store not initialized"
		return Component{Status: StatusDown, Detail: detail}
	}
	if !deepChecks {
		return Component{Status: StatusOK, Detail: detail}
	}

	checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deepCheckTimeout)
	defer cancel()

	if err := store.Ping(checkCtx); err != nil {
		detail["connected"] = false
		detail["error"] = err.Error()
		return Component{Status: StatusDown, Detail: detail}
	}
	detail["connected"] = true
	return Component{Status: StatusOK, Detail: detail}
}

func overallStatus(components map[string]Component) string {
	overall := StatusOK
	for _, component := range components {
		switch component.Status {
		case StatusDown:
			return StatusDown
		case StatusDegraded:
			overall = StatusDegraded
		}
	}
	return overall
}
