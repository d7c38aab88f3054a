package metrics

import (
	"sync/atomic"
	"time"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/llm"
)

// Store 는 채팅 제공자 호출 통계를 프로세스 내에 누적한다.
type Store struct {
	totalCalls        int64
	totalErrors       int64
	totalInputTokens  int64
	totalOutputTokens int64
	totalDurationMs   int64
	imageFallbacks    int64
	voiceFallbacks    int64
}

// NewStore 는 통계 저장소를 생성한다.
func NewStore() *Store {
	return &Store{}
}

// RecordSuccess 는 성공 호출 통계를 기록한다.
func (s *Store) RecordSuccess(duration time.Duration, usage llm.Usage) {
	if s == nil {
		return
	}
	atomic.AddInt64(&s.totalCalls, 1)
	atomic.AddInt64(&s.totalInputTokens, int64(usage.InputTokens))
	atomic.AddInt64(&s.totalOutputTokens, int64(usage.OutputTokens))
	atomic.AddInt64(&s.totalDurationMs, duration.Milliseconds())
}

// RecordError 는 실패 호출 통계를 기록한다.
func (s *Store) RecordError(duration time.Duration) {
	if s == nil {
		return
	}
	atomic.AddInt64(&s.totalCalls, 1)
	atomic.AddInt64(&s.totalErrors, 1)
	atomic.AddInt64(&s.totalDurationMs, duration.Milliseconds())
}

// RecordImageFallback 은 플레이스홀더 이미지 반환 횟수를 기록한다.
func (s *Store) RecordImageFallback() {
	if s == nil {
		return
	}
	atomic.AddInt64(&s.imageFallbacks, 1)
}

// RecordVoiceFallback 은 브라우저 TTS 전환 횟수를 기록한다.
func (s *Store) RecordVoiceFallback() {
	if s == nil {
		return
	}
	atomic.AddInt64(&s.voiceFallbacks, 1)
}

// Snapshot 는 통계 스냅샷을 반환한다.
func (s *Store) Snapshot() map[string]float64 {
	if s == nil {
		return map[string]float64{}
	}
	totalCalls := atomic.LoadInt64(&s.totalCalls)
	totalErrors := atomic.LoadInt64(&s.totalErrors)
	input := atomic.LoadInt64(&s.totalInputTokens)
	output := atomic.LoadInt64(&s.totalOutputTokens)
	durationMs := atomic.LoadInt64(&s.totalDurationMs)

	avgDuration := 0.0
	if totalCalls > 0 {
		avgDuration = float64(durationMs) / float64(totalCalls)
	}

	return map[string]float64{
		"total_calls":         float64(totalCalls),
		"total_errors":        float64(totalErrors),
		"total_input_tokens":  float64(input),
		"total_output_tokens": float64(output),
		"total_tokens":        float64(input + output),
		"total_duration_ms":   float64(durationMs),
		"avg_duration_ms":     avgDuration,
		"image_fallbacks":     float64(atomic.LoadInt64(&s.imageFallbacks)),
		"voice_fallbacks":     float64(atomic.LoadInt64(&s.voiceFallbacks)),
	}
}
