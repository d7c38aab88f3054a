package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/gemini"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/health"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/imagecache"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/logging"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/metrics"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/provider/elevenlabs"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/provider/together"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/telemetry"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/upstream"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/usage"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/usecase/image"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/usecase/text"
)

// ProvideLogger: 로거를 구성해 반환합니다.
// OTel이 활성화된 경우 로그에 trace_id/span_id가 자동으로 추가됩니다.
func ProvideLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.NewLoggerWithOTel(cfg.Logging, cfg.Telemetry.Enabled)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// ProvideTelemetry: trace 수집기를 초기화합니다.
func ProvideTelemetry(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.NewProvider(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	if provider.IsEnabled() {
		logger.Info("telemetry_enabled", "endpoint", cfg.Telemetry.OTLPEndpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	return provider, nil
}

// ProvideUsageStore: 사용량 DB 가 켜져 있을 때만 저장소를 만듭니다. 꺼져 있으면 nil 입니다.
func ProvideUsageStore(cfg *config.Config, logger *slog.Logger) usage.Store {
	if !cfg.Database.Enabled {
		return nil
	}
	return usage.NewRepository(cfg, logger)
}

// ProvideUsageRecorder: 채팅 토큰 사용량 기록기를 만듭니다.
func ProvideUsageRecorder(cfg *config.Config, store usage.Store, logger *slog.Logger) *usage.Recorder {
	return usage.NewRecorder(cfg.Database, store, logger)
}

// ProvideChatClient: 채팅, 분류, 이미지 생성을 담당하는 Together 클라이언트를 만듭니다.
func ProvideChatClient(
	cfg *config.Config,
	doer upstream.Doer,
	metricsStore *metrics.Store,
	recorder *usage.Recorder,
	logger *slog.Logger,
) *together.Client {
	return together.NewClient(doer, cfg.Provider, config.EnvToken(cfg.Provider.TokenEnv), metricsStore, recorder, logger)
}

// ProvideVoiceClient: ElevenLabs 음성 합성 클라이언트를 만듭니다.
func ProvideVoiceClient(cfg *config.Config, doer upstream.Doer, logger *slog.Logger) *elevenlabs.Client {
	return elevenlabs.NewClient(doer, cfg.Voice, config.EnvToken(cfg.Voice.TokenEnv), logger)
}

// ProvideClassifier: 안전 분류 백엔드를 선택합니다. 기본값은 채팅 제공자의 안전 모델입니다.
func ProvideClassifier(cfg *config.Config, chat *together.Client, logger *slog.Logger) (text.Classifier, error) {
	if !cfg.Safety.UsesGemini() {
		return chat, nil
	}
	client, err := gemini.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini classifier: %w", err)
	}
	logger.Info("safety_classifier_selected", "backend", "gemini", "model", cfg.Gemini.Model, "keys", len(cfg.Gemini.APIKeys))
	return client, nil
}

// ProvideImageService: 이미지 Service 를 만듭니다. 캐시가 꺼져 있으면 캐시 없이 동작합니다.
func ProvideImageService(
	cfg *config.Config,
	generator *together.Client,
	cacheStore *imagecache.Store,
	metricsStore *metrics.Store,
	logger *slog.Logger,
) (*image.Service, error) {
	var cache image.Cache
	if cacheStore.IsEnabled() {
		cache = cacheStore
	}
	return image.New(cfg, generator, cache, metricsStore, logger)
}

// ProvideHealthChecker: 켜져 있는 저장소만 깊은 검사 대상으로 등록합니다.
func ProvideHealthChecker(
	cfg *config.Config,
	cacheStore *imagecache.Store,
	usageStore usage.Store,
	metricsStore *metrics.Store,
) *health.Checker {
	deps := health.Dependencies{Stats: metricsStore}
	if cacheStore.IsEnabled() {
		deps.ImageCache = cacheStore
	}
	if usageStore != nil {
		deps.UsageDB = usageStore
	}
	return health.NewChecker(cfg, deps)
}
