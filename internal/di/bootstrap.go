//go:build !wireinject

package di

import (
	"context"
	"fmt"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/domain/assistant"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/domain/catalog"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/guard"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/handler"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/imagecache"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/metrics"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/server"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/upstream"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/usecase/text"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/usecase/voice"
)

// InitializeApp 은 애플리케이션 의존성을 초기화하고 App 인스턴스를 반환한다.
func InitializeApp(ctx context.Context) (*App, error) {
	cfg, err := config.ProvideConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	telemetryProvider, err := ProvideTelemetry(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	metricsStore := metrics.NewStore()
	httpClient := upstream.ProvideHTTPClient(cfg)
	upstreamClient := upstream.ProvideClient(cfg, httpClient, logger)

	usageStore := ProvideUsageStore(cfg, logger)
	usageRecorder := ProvideUsageRecorder(cfg, usageStore, logger)

	chatClient := ProvideChatClient(cfg, upstreamClient, metricsStore, usageRecorder, logger)
	voiceClient := ProvideVoiceClient(cfg, upstreamClient, logger)

	classifier, err := ProvideClassifier(cfg, chatClient, logger)
	if err != nil {
		return nil, err
	}

	contentGuard, err := guard.NewGuard(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("guard: %w", err)
	}

	games, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	prompts, err := assistant.NewPrompts()
	if err != nil {
		return nil, fmt.Errorf("assistant prompts: %w", err)
	}

	textService, err := text.New(cfg, chatClient, classifier, contentGuard, games, prompts, logger)
	if err != nil {
		return nil, fmt.Errorf("text service: %w", err)
	}

	imageCache, err := imagecache.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("image cache: %w", err)
	}

	imageService, err := ProvideImageService(cfg, chatClient, imageCache, metricsStore, logger)
	if err != nil {
		return nil, fmt.Errorf("image service: %w", err)
	}

	voiceService, err := voice.New(voiceClient, metricsStore, logger)
	if err != nil {
		return nil, fmt.Errorf("voice service: %w", err)
	}

	taskHandler, err := handler.NewTaskHandler(cfg, textService, imageService, voiceService, logger)
	if err != nil {
		return nil, fmt.Errorf("task handler: %w", err)
	}

	healthHandler := handler.NewHealthHandler(ProvideHealthChecker(cfg, imageCache, usageStore, metricsStore))
	usageHandler := handler.NewUsageHandler(cfg, usageStore, logger)

	router := handler.NewRouter(cfg, logger, taskHandler, healthHandler, usageHandler)
	httpServer := server.NewHTTPServer(cfg, router)

	return NewApp(httpServer, logger, cfg, telemetryProvider, imageCache, usageStore, usageRecorder), nil
}
