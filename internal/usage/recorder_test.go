package usage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
)

type fakeStore struct {
	mu    sync.Mutex
	rows  map[usageKey]usageDelta
	err   error
	calls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[usageKey]usageDelta)}
}

func (s *fakeStore) RecordUsage(_ context.Context, model string, input int64, output int64, requests int64, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	key := usageKey{date: dateOrToday(date), model: model}
	row := s.rows[key]
	row.inputTokens += input
	row.outputTokens += output
	row.requestCount += requests
	s.rows[key] = row
	return nil
}

func (s *fakeStore) GetDailyUsage(context.Context, time.Time) (*DailyUsage, error) { return nil, nil }
func (s *fakeStore) GetRecentUsage(context.Context, int) ([]DailyUsage, error) { return nil, nil }
func (s *fakeStore) GetTotalUsage(context.Context, int) (DailyUsage, error) { return DailyUsage{}, nil }
func (s *fakeStore) Ping(context.Context) error { return nil }
func (s *fakeStore) Close() {}

func (s *fakeStore) row(model string) usageDelta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[usageKey{date: todayDate(), model: model}]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecorderWritesDirectlyWithoutBatch(t *testing.T) {
	store := newFakeStore()
	recorder := NewRecorder(config.DatabaseConfig{}, store, discardLogger())

	recorder.Record(context.Background(), "chat-model", 7, 3)
	recorder.Record(context.Background(), "chat-model", 0, 0)

	got := store.row("chat-model")
	if got.inputTokens != 7 || got.outputTokens != 3 || got.requestCount != 1 {
		t.Fatalf("unexpected row: %+v", got)
	}
	if store.calls != 1 {
		t.Fatalf("expected zero-token record to be skipped, calls=%d", store.calls)
	}
}

func TestRecorderNilIsNoop(t *testing.T) {
	var recorder *Recorder
	recorder.Record(context.Background(), "m", 1, 1)
	recorder.Close()

	NewRecorder(config.DatabaseConfig{UsageBatchEnabled: true}, nil, nil).Record(context.Background(), "m", 1, 1)
}

func TestRecorderBatchFlushesOnClose(t *testing.T) {
	store := newFakeStore()
	recorder := NewRecorder(config.DatabaseConfig{
		UsageBatchEnabled:              true,
		UsageBatchFlushIntervalSeconds: 3600,
		UsageBatchMaxPendingRequests:   1000,
	}, store, discardLogger())

	recorder.Record(context.Background(), "a", 5, 1)
	recorder.Record(context.Background(), "a", 5, 1)
	recorder.Record(context.Background(), "b", 2, 2)
	recorder.Close()

	if got := store.row("a"); got.inputTokens != 10 || got.outputTokens != 2 || got.requestCount != 2 {
		t.Fatalf("unexpected row a: %+v", got)
	}
	if got := store.row("b"); got.requestCount != 1 {
		t.Fatalf("unexpected row b: %+v", got)
	}
}

func TestBatcherRequeuesOnFailure(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("db down")
	b := newBatcher(config.DatabaseConfig{UsageBatchFlushIntervalSeconds: 1, UsageBatchMaxBackoffSeconds: 4}, store, discardLogger())

	b.add("m", 3, 4)
	b.flush(false)

	if b.consecutiveFlushFailures != 1 || b.nextFlushAllowedAt.IsZero() {
		t.Fatalf("expected failure to be registered")
	}
	if b.pendingRequestsTotal != 1 {
		t.Fatalf("expected delta to be requeued, pending=%d", b.pendingRequestsTotal)
	}

	calls := store.calls
	b.flush(false)
	if store.calls != calls {
		t.Fatalf("expected flush to be skipped during backoff")
	}

	store.mu.Lock()
	store.err = nil
	store.mu.Unlock()
	b.flush(true)
	if got := store.row("m"); got.inputTokens != 3 || got.outputTokens != 4 {
		t.Fatalf("unexpected row: %+v", got)
	}
	if b.consecutiveFlushFailures != 0 {
		t.Fatalf("expected failures to reset")
	}
}

func TestBatcherBackoff(t *testing.T) {
	b := &batcher{flushInterval: time.Second, maxBackoff: 4 * time.Second}

	tests := []struct {
		failures int
		want     time.Duration
	}{
		{failures: 1, want: time.Second},
		{failures: 2, want: 2 * time.Second},
		{failures: 3, want: 4 * time.Second},
		{failures: 4, want: 4 * time.Second},
		{failures: 80, want: 4 * time.Second},
	}
	for _, tt := range tests {
		b.consecutiveFlushFailures = tt.failures
		if backoff := b.computeBackoff(); backoff != tt.want {
			t.Fatalf("failures=%d: unexpected backoff %v", tt.failures, backoff)
		}
	}
}

func TestBatcherShouldLogFailure(t *testing.T) {
	b := &batcher{errorLogMaxInterval: time.Hour, now: time.Now}
	b.consecutiveFlushFailures = 1
	if !b.shouldLogFailure() {
		t.Fatalf("expected log on first failure")
	}

	b.consecutiveFlushFailures = 3
	b.lastErrorLoggedAt = time.Now()
	if b.shouldLogFailure() {
		t.Fatalf("did not expect log for non power-of-two")
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	if !isPowerOfTwo(1) || !isPowerOfTwo(2) || !isPowerOfTwo(4) {
		t.Fatalf("expected power of two")
	}
	if isPowerOfTwo(3) || isPowerOfTwo(0) {
		t.Fatalf("unexpected power of two")
	}
}
