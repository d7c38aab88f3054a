package voice

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/metrics"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/provider/elevenlabs"
)

// 브라우저 TTS 전환 사유.
const (
	NoTokenError   = "voice synthesis is not configured"
	EmptyTextError = "no speakable text"
)

// Synthesizer 는 음성 합성 제공자다.
type Synthesizer interface {
	HasToken() bool
	Synthesize(ctx context.Context, text string) (elevenlabs.Audio, error)
}

// Result 는 음성 합성 결과다. 실패하면 UseBrowserTTS 와 정리된 Text 를 담는다.
type Result struct {
	Data          string `json:"data,omitempty"`
	ContentType   string `json:"contentType,omitempty"`
	Error         string `json:"error,omitempty"`
	UseBrowserTTS bool   `json:"useBrowserTTS,omitempty"`
	Text          string `json:"text,omitempty"`
}

// Service: 단일 TTS 호출과 브라우저 TTS 전환을 담당합니다.
type Service struct {
	synthesizer Synthesizer
	metrics     *metrics.Store
	logger      *slog.Logger
}

// New: 음성 Service 를 생성합니다.
func New(synthesizer Synthesizer, metricsStore *metrics.Store, logger *slog.Logger) (*Service, error) {
	if synthesizer == nil {
		return nil, errors.New("voice synthesizer is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{synthesizer: synthesizer, metrics: metricsStore, logger: logger}, nil
}

// Generate: text 를 음성으로 변환합니다. 실패는 모두 브라우저 TTS 신호로 바뀝니다.
func (s *Service) Generate(ctx context.Context, text string) Result {
	cleaned := Sanitize(text)

	if !s.synthesizer.HasToken() {
		return s.browserFallback("no_token", NoTokenError, cleaned)
	}
	if cleaned == "" {
		return s.browserFallback("empty_text", EmptyTextError, cleaned)
	}

	audio, err := s.synthesizer.Synthesize(ctx, cleaned)
	if err != nil {
		s.logger.Warn("voice_synthesis_failed", "err", err)
		return s.browserFallback("failed", err.Error(), cleaned)
	}

	metrics.VoiceOutcomes.WithLabelValues("synthesized").Inc()
	return Result{
		Data:        base64.StdEncoding.EncodeToString(audio.Data),
		ContentType: audio.ContentType,
	}
}

func (s *Service) browserFallback(outcome string, reason string, cleaned string) Result {
	metrics.VoiceOutcomes.WithLabelValues(outcome).Inc()
	s.metrics.RecordVoiceFallback()
	return Result{Error: reason, UseBrowserTTS: true, Text: cleaned}
}
