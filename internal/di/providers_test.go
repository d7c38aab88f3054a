package di

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/gemini"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/health"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/metrics"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/provider/together"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/telemetry"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/usage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProvideUsageStoreDisabled(t *testing.T) {
	cfg := &config.Config{}
	if store := ProvideUsageStore(cfg, testLogger()); store != nil {
		t.Fatalf("expected nil store when database disabled")
	}

	cfg.Database.Enabled = true
	store := ProvideUsageStore(cfg, testLogger())
	if _, ok := store.(*usage.Repository); !ok {
		t.Fatalf("expected repository, got %T", store)
	}
}

func TestProvideClassifierSelectsBackend(t *testing.T) {
	chat := together.NewClient(nil, config.ProviderConfig{}, config.StaticToken(""), nil, nil, testLogger())

	cfg := &config.Config{Safety: config.SafetyConfig{Backend: "together"}}
	classifier, err := ProvideClassifier(cfg, chat, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if classifier != chat {
		t.Fatalf("expected chat client classifier")
	}

	cfg.Safety.Backend = "Gemini"
	cfg.Gemini = config.GeminiConfig{APIKeys: []string{"key"}, Model: "gemini-2.5-flash", TimeoutSeconds: 5}
	classifier, err = ProvideClassifier(cfg, chat, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := classifier.(*gemini.Client); !ok {
		t.Fatalf("expected gemini classifier, got %T", classifier)
	}
}

func TestProvideHealthCheckerSkipsDisabledStores(t *testing.T) {
	checker := ProvideHealthChecker(&config.Config{}, nil, nil, metrics.NewStore())
	resp := checker.Collect(context.Background(), true)
	if !resp.Ready() {
		t.Fatalf("expected ready with disabled stores, got %+v", resp)
	}
	if got := resp.Components["image_cache"].Status; got != health.StatusOK {
		t.Fatalf("expected disabled cache ok, got %s", got)
	}
	if _, ok := resp.Components["upstream"]; !ok {
		t.Fatalf("expected upstream stats component")
	}
}

func TestAppCloseWithDisabledComponents(t *testing.T) {
	provider, err := telemetry.NewProvider(context.Background(), config.TelemetryConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	app := NewApp(nil, testLogger(), &config.Config{}, provider, nil, nil, usage.NewRecorder(config.DatabaseConfig{}, nil, testLogger()))
	app.Close(context.Background())
}
