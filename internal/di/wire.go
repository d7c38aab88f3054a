//go:build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/domain/assistant"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/domain/catalog"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/guard"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/handler"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/imagecache"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/metrics"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/provider/elevenlabs"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/provider/together"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/server"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/upstream"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/usecase/image"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/usecase/text"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/usecase/voice"
)

func InitializeApp(ctx context.Context) (*App, error) {
	wire.Build(
		config.ProvideConfig,
		ProvideLogger,
		ProvideTelemetry,
		metrics.NewStore,
		upstream.ProvideHTTPClient,
		upstream.ProvideClient,
		wire.Bind(new(upstream.Doer), new(*upstream.Client)),
		ProvideUsageStore,
		ProvideUsageRecorder,
		ProvideChatClient,
		ProvideVoiceClient,
		ProvideClassifier,
		wire.Bind(new(text.ChatClient), new(*together.Client)),
		wire.Bind(new(voice.Synthesizer), new(*elevenlabs.Client)),
		guard.NewGuard,
		wire.Bind(new(text.Moderator), new(*guard.ContentGuard)),
		catalog.Load,
		wire.Bind(new(text.Catalog), new(*catalog.Catalog)),
		assistant.NewPrompts,
		text.New,
		imagecache.NewStore,
		ProvideImageService,
		voice.New,
		wire.Bind(new(handler.TextGenerator), new(*text.Service)),
		wire.Bind(new(handler.ImageGenerator), new(*image.Service)),
		wire.Bind(new(handler.VoiceGenerator), new(*voice.Service)),
		handler.NewTaskHandler,
		ProvideHealthChecker,
		handler.NewHealthHandler,
		handler.NewUsageHandler,
		handler.NewRouter,
		server.NewHTTPServer,
		NewApp,
	)
	return nil, nil
}
