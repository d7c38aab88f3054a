package di

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/imagecache"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/telemetry"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/usage"
)

// App: 애플리케이션 구성 요소를 묶는다.
type App struct {
	Server        *http.Server
	Logger        *slog.Logger
	Config        *config.Config
	Telemetry     *telemetry.Provider
	ImageCache    *imagecache.Store
	UsageStore    usage.Store
	UsageRecorder *usage.Recorder
}

// NewApp: App 인스턴스를 생성합니다.
func NewApp(
	server *http.Server,
	logger *slog.Logger,
	cfg *config.Config,
	telemetryProvider *telemetry.Provider,
	imageCache *imagecache.Store,
	usageStore usage.Store,
	usageRecorder *usage.Recorder,
) *App {
	return &App{
		Server:        server,
		Logger:        logger,
		Config:        cfg,
		Telemetry:     telemetryProvider,
		ImageCache:    imageCache,
		UsageStore:    usageStore,
		UsageRecorder: usageRecorder,
	}
}

// Close: 앱 리소스를 정리합니다. 사용량 배치를 먼저 flush 한 뒤 저장소를 닫습니다.
func (a *App) Close(ctx context.Context) {
	if a.UsageRecorder != nil {
		a.UsageRecorder.Close()
	}
	if a.UsageStore != nil {
		a.UsageStore.Close()
	}
	if a.ImageCache != nil {
		a.ImageCache.Close()
	}
	if err := a.Telemetry.Shutdown(ctx); err != nil && a.Logger != nil {
		a.Logger.Warn("telemetry_shutdown_failed", "err", err)
	}
}
