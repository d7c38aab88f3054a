package image

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/metrics"
)

const qualitySuffix = ", high quality, detailed, vibrant colors, child-friendly illustration"

// NoTokenError 는 토큰이 없을 때 결과에 담기는 메시지다.
const NoTokenError = "image generation is not configured"

// Generator 는 후보 모델 하나로 이미지를 생성하는 제공자다.
type Generator interface {
	HasToken() bool
	GenerateImage(ctx context.Context, candidate config.ImageCandidate, prompt string) (string, error)
}

// Cache 는 생성 이미지 캐시다. 원본 바이트를 저장한다.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
}

// Result 는 이미지 생성 결과다. 모든 경우 HTTP 200 본문으로 그대로 직렬화된다.
type Result struct {
	Data        string `json:"data"`
	ContentType string `json:"contentType"`
	Error       string `json:"error,omitempty"`
	Fallback    bool   `json:"fallback,omitempty"`
	Model       string `json:"model,omitempty"`
	Cached      bool   `json:"cached,omitempty"`
}

// attempt 는 후보 하나의 시도 결과다.
type attempt struct {
	data string
	err  error
}

func (a attempt) succeeded() bool {
	return a.err == nil && a.data != ""
}

// Service: 후보 모델을 순서대로 시도하는 이미지 생성 흐름을 담당합니다.
type Service struct {
	generator  Generator
	candidates []config.ImageCandidate
	cache      Cache
	metrics    *metrics.Store
	logger     *slog.Logger
}

// New: 이미지 Service 를 생성합니다. cache 는 nil 일 수 있습니다.
func New(cfg *config.Config, generator Generator, cache Cache, metricsStore *metrics.Store, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if generator == nil {
		return nil, errors.New("image generator is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		generator:  generator,
		candidates: append([]config.ImageCandidate(nil), cfg.Provider.ImageCandidates...),
		cache:      cache,
		metrics:    metricsStore,
		logger:     logger,
	}, nil
}

// Generate: 이미지를 생성합니다. 모든 후보가 실패하면 플레이스홀더를 반환하므로 오류가 없습니다.
func (s *Service) Generate(ctx context.Context, userPrompt string) Result {
	if !s.generator.HasToken() {
		metrics.ImageOutcomes.WithLabelValues("no_token").Inc()
		return Result{Data: transparentPixelPNG, ContentType: ContentTypePNG, Error: NoTokenError}
	}

	enhanced := EnhancePrompt(userPrompt)
	if cached, ok := s.lookup(ctx, enhanced); ok {
		metrics.ImageOutcomes.WithLabelValues("cached").Inc()
		return cached
	}

	var lastErr error
	for _, candidate := range s.candidates {
		result := s.try(ctx, candidate, enhanced)
		if result.succeeded() {
			metrics.ImageOutcomes.WithLabelValues("generated").Inc()
			s.store(ctx, enhanced, result.data)
			return Result{Data: result.data, ContentType: detectContentType(result.data), Model: candidate.ModelID}
		}
		lastErr = result.err
		s.logger.Warn("image_candidate_failed", "model", candidate.ModelID, "fast", candidate.Fast, "err", result.err)
		if ctx.Err() != nil {
			break
		}
	}

	if lastErr == nil {
		lastErr = errors.New("no image candidates configured")
	}
	metrics.ImageOutcomes.WithLabelValues("fallback").Inc()
	s.metrics.RecordImageFallback()
	s.logger.Warn("image_fallback_placeholder", "candidates", len(s.candidates), "err", lastErr)
	return Result{
		Data:        PlaceholderSVG(userPrompt),
		ContentType: ContentTypePNG,
		Error:       lastErr.Error(),
		Fallback:    true,
	}
}

func (s *Service) try(ctx context.Context, candidate config.ImageCandidate, prompt string) attempt {
	data, err := s.generator.GenerateImage(ctx, candidate, prompt)
	if err == nil && data == "" {
		err = errors.New("empty image data")
	}
	return attempt{data: data, err: err}
}

func (s *Service) lookup(ctx context.Context, key string) (Result, bool) {
	if s.cache == nil {
		return Result{}, false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("image_cache_get_failed", "err", err)
		return Result{}, false
	}
	if !ok || len(raw) == 0 {
		return Result{}, false
	}
	return Result{
		Data:        base64.StdEncoding.EncodeToString(raw),
		ContentType: sniff(raw),
		Cached:      true,
	}, true
}

func (s *Service) store(ctx context.Context, key string, data string) {
	if s.cache == nil {
		return
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw); err != nil {
		s.logger.Warn("image_cache_set_failed", "err", err)
	}
}

// EnhancePrompt: 품질 키워드가 없을 때만 접미사를 붙입니다. 여러 번 적용해도 결과가 같습니다.
func EnhancePrompt(userPrompt string) string {
	trimmed := strings.TrimSpace(userPrompt)
	lowered := strings.ToLower(trimmed)
	if strings.Contains(lowered, "high quality") || strings.Contains(lowered, "detailed") {
		return trimmed
	}
	return trimmed + qualitySuffix
}

func detectContentType(data string) string {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return ContentTypePNG
	}
	return sniff(raw)
}

func sniff(raw []byte) string {
	contentType := http.DetectContentType(raw)
	if strings.HasPrefix(contentType, "image/") {
		return contentType
	}
	return ContentTypePNG
}
