package health

import (
	"context"
	"errors"
	"testing"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
)

type fakePinger struct {
	err   error
	calls int
}

func (p *fakePinger) Ping(context.Context) error {
	p.calls++
	return p.err
}

func testConfig() *config.Config {
	return &config.Config{
		Provider: config.ProviderConfig{TokenEnv: "NEURAPLAY_TEST_CHAT_TOKEN", ChatModel: "chat-model"},
		Voice:    config.VoiceConfig{TokenEnv: "NEURAPLAY_TEST_VOICE_TOKEN"},
	}
}

func TestCollectDegradedWithoutTokens(t *testing.T) {
	t.Setenv("NEURAPLAY_TEST_CHAT_TOKEN", "")
	t.Setenv("NEURAPLAY_TEST_VOICE_TOKEN", "")

	resp := NewChecker(testConfig(), Dependencies{}).Collect(context.Background(), true)
	if resp.Status != StatusDegraded {
		t.Fatalf("expected degraded status, got %s", resp.Status)
	}
	if !resp.Ready() {
		t.Fatalf("expected degraded proxy to stay ready")
	}
	if resp.Components["image_cache"].Status != StatusOK || resp.Components["usage_db"].Status != StatusOK {
		t.Fatalf("expected disabled stores to be ok: %+v", resp.Components)
	}
}

func TestCollectOKWithTokens(t *testing.T) {
	t.Setenv("NEURAPLAY_TEST_CHAT_TOKEN", "chat")
	t.Setenv("NEURAPLAY_TEST_VOICE_TOKEN", "voice")

	resp := NewChecker(testConfig(), Dependencies{}).Collect(context.Background(), false)
	if resp.Status != StatusOK {
		t.Fatalf("expected ok status, got %s", resp.Status)
	}
	if resp.Components["providers"].Detail["chat_token_present"] != true {
		t.Fatalf("expected chat token to be reported present")
	}
}

func TestCollectDeepChecksStores(t *testing.T) {
	t.Setenv("NEURAPLAY_TEST_CHAT_TOKEN", "chat")
	t.Setenv("NEURAPLAY_TEST_VOICE_TOKEN", "voice")

	cfg := testConfig()
	cfg.ImageCache.Enabled = true
	cfg.Database.Enabled = true
	cache := &fakePinger{}
	db := &fakePinger{err: errors.New("connection refused")}
	checker := NewChecker(cfg, Dependencies{ImageCache: cache, UsageDB: db})

	shallow := checker.Collect(context.Background(), false)
	if shallow.Status != StatusOK || cache.calls != 0 || db.calls != 0 {
		t.Fatalf("expected shallow check to skip pings: %+v", shallow)
	}

	deep := checker.Collect(context.Background(), true)
	if deep.Status != StatusDown || deep.Ready() {
		t.Fatalf("expected down status, got %s", deep.Status)
	}
	if deep.Components["image_cache"].Detail["connected"] != true {
		t.Fatalf("expected image cache connected")
	}
	if deep.Components["usage_db"].Detail["error"] != "connection refused" {
		t.Fatalf("unexpected usage_db detail: %+v", deep.Components["usage_db"].Detail)
	}
}

func TestCollectEnabledStoreWithoutClient(t *testing.T) {
	cfg := testConfig()
	cfg.ImageCache.Enabled = true

	resp := NewChecker(cfg, Dependencies{}).Collect(context.Background(), false)
	if resp.Components["image_cache"].Status != StatusDown {
		t.Fatalf("expected missing client to be down")
	}
}

type fakeStats map[string]float64

func (s fakeStats) Snapshot() map[string]float64 { return s }

func TestCollectIncludesUpstreamStats(t *testing.T) {
	checker := NewChecker(testConfig(), Dependencies{Stats: fakeStats{"total_calls": 3, "image_fallbacks": 1}})

	resp := checker.Collect(context.Background(), false)
	upstream, ok := resp.Components["upstream"]
	if !ok {
		t.Fatalf("expected upstream component")
	}
	if upstream.Status != StatusOK || upstream.Detail["total_calls"] != float64(3) {
		t.Fatalf("unexpected upstream component: %+v", upstream)
	}

	if _, ok := NewChecker(testConfig(), Dependencies{}).Collect(context.Background(), false).Components["upstream"]; ok {
		t.Fatalf("expected no upstream component without stats")
	}
}
