package imagecache

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)
	cfg := &config.Config{
		ImageCache: config.ImageCacheConfig{
			URL:          "redis://" + mini.Addr(),
			Enabled:      true,
			DisableCache: true,
			TTLMinutes:   1,
		},
	}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(store.Close)
	return store, mini
}

func TestStoreRoundTrip(t *testing.T) {
	store, mini := newTestStore(t)
	ctx := context.Background()
	image := bytes.Repeat([]byte("\x89PNG-pixels-"), 64)

	if _, ok, err := store.Get(ctx, "cat"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "cat", image); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := store.Get(ctx, "cat")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, image) {
		t.Fatalf("round trip mismatch")
	}

	raw, err := mini.Get(cacheKey("cat"))
	if err != nil {
		t.Fatalf("raw get: %v", err)
	}
	if len(raw) >= len(image) {
		t.Fatalf("expected compressed value, got %d bytes for %d", len(raw), len(image))
	}

	mini.FastForward(2 * time.Minute)
	if _, ok, _ := store.Get(ctx, "cat"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestStorePing(t *testing.T) {
	store, _ := newTestStore(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestNewStoreDisabled(t *testing.T) {
	store, err := NewStore(&config.Config{})
	if err != nil || store != nil {
		t.Fatalf("expected nil store, got %v %v", store, err)
	}
	if store.IsEnabled() {
		t.Fatalf("nil store must be disabled")
	}
	if _, ok, err := store.Get(context.Background(), "x"); ok || err != nil {
		t.Fatalf("nil store must miss")
	}

	_, err = NewStore(&config.Config{ImageCache: config.ImageCacheConfig{Required: true}})
	if !errors.Is(err, ErrStoreRequired) {
		t.Fatalf("expected required error, got %v", err)
	}
}

func TestParseStoreURL(t *testing.T) {
	tests := []struct {
		raw     string
		addr    string
		db      int
		tls     bool
		wantErr bool
	}{
		{raw: "redis://localhost", addr: "localhost:6379"},
		{raw: "rediss://user:pw@cache.example:6380/2", addr: "cache.example:6380", db: 2, tls: true},
		{raw: "10.0.0.1:7000", addr: "10.0.0.1:7000"},
		{raw: "cache-host", addr: "cache-host:6379"},
		{raw: "http://localhost", wantErr: true},
		{raw: "redis://localhost/x", wantErr: true},
		{raw: " ", wantErr: true},
	}
	for _, tc := range tests {
		info, err := parseStoreURL(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseStoreURL(%q) expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseStoreURL(%q) unexpected error: %v", tc.raw, err)
			continue
		}
		if info.addr != tc.addr || info.selectDB != tc.db || info.useTLS != tc.tls {
			t.Errorf("parseStoreURL(%q) = %+v", tc.raw, info)
		}
	}
}

func TestCompressRoundTrip(t *testing.T) {
	src := bytes.Repeat([]byte("abc"), 100)
	compressed, err := compressZstd(src)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	out, err := decompressZstd(compressed)
	if err != nil || !bytes.Equal(out, src) {
		t.Fatalf("decompress mismatch: %v", err)
	}
	if _, err := decompressZstd([]byte("not zstd")); err == nil {
		t.Fatalf("expected error for invalid data")
	}
}
