package usage

import (
	"context"
	"log/slog"
	"time"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
)

// Recorder 는 채팅 응답의 토큰 사용량을 바로 저장하거나 배치로 적재한다.
// nil Recorder 는 아무것도 기록하지 않는다.
type Recorder struct {
	store   Store
	batcher *batcher
	logger  *slog.Logger
}

// NewRecorder 는 설정에 따라 배치 사용 여부를 결정해 Recorder를 생성한다.
func NewRecorder(cfg config.DatabaseConfig, store Store, logger *slog.Logger) *Recorder {
	recorder := &Recorder{
		store:  store,
		logger: logger,
	}

	if store != nil && cfg.UsageBatchEnabled {
		recorder.batcher = newBatcher(cfg, store, logger)
		recorder.batcher.start()
		if logger != nil {
			logger.Info(
				"usage_batch_enabled",
				"flush_interval", recorder.batcher.flushInterval,
				"max_pending_requests", recorder.batcher.maxPendingRequests,
				"max_backoff", recorder.batcher.maxBackoff,
			)
		}
	}

	return recorder
}

// Record 는 1회 채팅 호출의 토큰 사용량을 기록한다.
func (r *Recorder) Record(ctx context.Context, model string, inputTokens int64, outputTokens int64) {
	if r == nil || r.store == nil {
		return
	}
	if inputTokens <= 0 && outputTokens <= 0 {
		return
	}

	if r.batcher != nil {
		r.batcher.add(model, inputTokens, outputTokens)
		return
	}

	if err := r.store.RecordUsage(ctx, model, inputTokens, outputTokens, 1, time.Time{}); err != nil {
		if r.logger != nil {
			r.logger.Warn("usage_save_failed", "model", model, "err", err)
		}
	}
}

// Close 는 배치 플러셔를 중지하고 남은 사용량을 플러시한다.
func (r *Recorder) Close() {
	if r == nil || r.batcher == nil {
		return
	}
	r.batcher.stop()
}
