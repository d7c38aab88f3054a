package usage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
)

// usageDelta 일자/모델별 토큰 사용량 델타
type usageDelta struct {
	inputTokens  int64
	outputTokens int64
	requestCount int64
}

const defaultFlushTimeout = 5 * time.Second

// batcher 는 채팅 토큰 사용량을 모아 주기적으로 DB에 플러시한다.
type batcher struct {
	store               Store
	logger              *slog.Logger
	flushInterval       time.Duration
	flushTimeout        time.Duration
	maxPendingRequests  int
	maxBackoff          time.Duration
	errorLogMaxInterval time.Duration
	now                 func() time.Time

	mu                   sync.Mutex
	pending              map[usageKey]*usageDelta
	pendingRequestsTotal int

	wakeup chan struct{}
	stopCh chan struct{}
	doneCh chan struct{}

	consecutiveFlushFailures int
	nextFlushAllowedAt       time.Time
	lastErrorLoggedAt        time.Time
	flushedRows              int
	droppedRows              int
}

// newBatcher 새로운 배치 플러셔 생성
func newBatcher(cfg config.DatabaseConfig, store Store, logger *slog.Logger) *batcher {
	interval := time.Duration(cfg.UsageBatchFlushIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Second
	}
	maxBackoff := time.Duration(cfg.UsageBatchMaxBackoffSeconds) * time.Second
	if maxBackoff < interval {
		maxBackoff = interval
	}
	flushTimeout := time.Duration(cfg.UsageBatchFlushTimeoutSeconds) * time.Second
	if flushTimeout <= 0 {
		flushTimeout = defaultFlushTimeout
	}
	return &batcher{
		store:               store,
		logger:              logger,
		flushInterval:       interval,
		flushTimeout:        flushTimeout,
		maxPendingRequests:  max(1, cfg.UsageBatchMaxPendingRequests),
		maxBackoff:          maxBackoff,
		errorLogMaxInterval: time.Duration(cfg.UsageBatchErrorLogIntervalSecs) * time.Second,
		now:                 time.Now,
		pending:             make(map[usageKey]*usageDelta),
		wakeup:              make(chan struct{}, 1),
		stopCh:              make(chan struct{}),
		doneCh:              make(chan struct{}),
	}
}

func (b *batcher) start() {
	go b.loop()
}

// stop 은 루프를 멈추고 남은 델타를 한 번 더 플러시한다.
func (b *batcher) stop() {
	close(b.stopCh)
	<-b.doneCh
}

func (b *batcher) add(model string, inputTokens int64, outputTokens int64) {
	if inputTokens <= 0 && outputTokens <= 0 {
		return
	}

	key := usageKey{date: dateOf(b.now()), model: model}
	b.mu.Lock()
	b.mergeLocked(key, usageDelta{inputTokens: inputTokens, outputTokens: outputTokens, requestCount: 1})
	shouldFlush := b.pendingRequestsTotal >= b.maxPendingRequests
	b.mu.Unlock()

	if shouldFlush {
		b.signal()
	}
}

func (b *batcher) mergeLocked(key usageKey, delta usageDelta) {
	existing := b.pending[key]
	if existing == nil {
		existing = &usageDelta{}
		b.pending[key] = existing
	}
	existing.inputTokens += delta.inputTokens
	existing.outputTokens += delta.outputTokens
	existing.requestCount += delta.requestCount
	b.pendingRequestsTotal += int(delta.requestCount)
}

func (b *batcher) loop() {
	ticker := time.NewTicker(b.flushInterval)
	defer func() {
		ticker.Stop()
		close(b.doneCh)
	}()

	for {
		select {
		case <-ticker.C:
			b.flush(false)
		case <-b.wakeup:
			b.flush(false)
		case <-b.stopCh:
			b.flush(true)
			return
		}
	}
}

func (b *batcher) signal() {
	select {
	case b.wakeup <- struct{}{}:
	default:
	}
}

func (b *batcher) flush(isShutdown bool) {
	if !isShutdown && !b.nextFlushAllowedAt.IsZero() && b.now().Before(b.nextFlushAllowedAt) {
		return
	}

	snapshot := b.takeSnapshot()
	if len(snapshot) == 0 {
		return
	}

	var firstErr error
	for key, delta := range snapshot {
		ctx, cancel := context.WithTimeout(context.Background(), b.flushTimeout)
		err := b.store.RecordUsage(ctx, key.model, delta.inputTokens, delta.outputTokens, delta.requestCount, key.date)
		cancel()
		if err == nil {
			b.flushedRows++
			continue
		}
		if firstErr == nil {
			firstErr = err
		}
		if isShutdown {
			b.droppedRows++
			continue
		}
		b.mu.Lock()
		b.mergeLocked(key, delta)
		b.mu.Unlock()
	}

	if firstErr != nil {
		b.registerFailure(firstErr, isShutdown)
		return
	}
	b.consecutiveFlushFailures = 0
	b.nextFlushAllowedAt = time.Time{}
}

func (b *batcher) takeSnapshot() map[usageKey]usageDelta {
	b.mu.Lock()
	defer b.mu.Unlock()

	snapshot := make(map[usageKey]usageDelta, len(b.pending))
	for key, delta := range b.pending {
		snapshot[key] = *delta
	}
	b.pending = make(map[usageKey]*usageDelta)
	b.pendingRequestsTotal = 0
	return snapshot
}

func (b *batcher) registerFailure(err error, isShutdown bool) {
	b.consecutiveFlushFailures++
	backoff := b.computeBackoff()
	b.nextFlushAllowedAt = b.now().Add(backoff)

	if !isShutdown && !b.shouldLogFailure() {
		return
	}
	b.lastErrorLoggedAt = b.now()
	if b.logger != nil {
		b.logger.Warn(
			"usage_batch_flush_failed",
			"failures", b.consecutiveFlushFailures,
			"backoff", backoff,
			"shutdown", isShutdown,
			"dropped_rows", b.droppedRows,
			"err", err,
		)
	}
}

func (b *batcher) computeBackoff() time.Duration {
	shift := min(max(0, b.consecutiveFlushFailures-1), 16)
	backoff := b.flushInterval * time.Duration(1<<shift)
	if backoff > b.maxBackoff {
		backoff = b.maxBackoff
	}
	if backoff <= 0 {
		backoff = b.flushInterval
	}
	return backoff
}

func (b *batcher) shouldLogFailure() bool {
	if b.consecutiveFlushFailures <= 0 {
		return false
	}
	if isPowerOfTwo(b.consecutiveFlushFailures) {
		return true
	}
	if b.errorLogMaxInterval <= 0 {
		return false
	}
	return b.now().Sub(b.lastErrorLoggedAt) >= b.errorLogMaxInterval
}

// isPowerOfTwo 2의 거듭제곱인지 확인
func isPowerOfTwo(value int) bool {
	return value > 0 && (value&(value-1)) == 0
}
