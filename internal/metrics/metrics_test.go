package metrics

import (
	"testing"
	"time"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/llm"
)

func TestStoreRecordsMetrics(t *testing.T) {
	store := NewStore()
	store.RecordSuccess(120*time.Millisecond, llm.Usage{InputTokens: 2, OutputTokens: 3})
	store.RecordError(50 * time.Millisecond)
	store.RecordImageFallback()

	snapshot := store.Snapshot()
	if snapshot["total_tokens"] != 5 {
		t.Fatalf("expected total_tokens 5, got %v", snapshot["total_tokens"])
	}
	if snapshot["total_calls"] != 2 {
		t.Fatalf("expected total_calls 2, got %v", snapshot["total_calls"])
	}
	if snapshot["total_errors"] != 1 {
		t.Fatalf("expected total_errors 1, got %v", snapshot["total_errors"])
	}
	if snapshot["image_fallbacks"] != 1 {
		t.Fatalf("expected image_fallbacks 1, got %v", snapshot["image_fallbacks"])
	}
}

func TestNilStoreIsNoop(t *testing.T) {
	var store *Store
	store.RecordSuccess(time.Second, llm.Usage{})
	store.RecordError(time.Second)
	store.RecordVoiceFallback()
	if len(store.Snapshot()) != 0 {
		t.Fatalf("expected empty snapshot for nil store")
	}
}
