package text

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/domain/assistant"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/domain/catalog"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/llm"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/metrics"
)

// Outcome 은 텍스트 처리가 끝난 단계다.
type Outcome string

// 처리 종료 단계.
const (
	OutcomeNoToken          Outcome = "no_token"
	OutcomeBlocked          Outcome = "blocked"
	OutcomeCatalog          Outcome = "catalog"
	OutcomeRecommendation   Outcome = "recommendation"
	OutcomeUpstreamFailed   Outcome = "upstream_failed"
	OutcomeUnsafe           Outcome = "unsafe"
	OutcomeClassifierFailed Outcome = "classifier_failed"
	OutcomeGenerated        Outcome = "generated"
)

const defaultRecommendationLimit = 2

// ChatClient 는 채팅 완성 제공자다.
type ChatClient interface {
	HasToken() bool
	Chat(ctx context.Context, messages []llm.Message) (llm.ChatResult, error)
}

// Classifier 는 2차 안전 분류기다.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// Moderator 는 금칙어 검사기다.
type Moderator interface {
	IsBlocked(input string) bool
}

// Catalog 는 게임 카탈로그 조회 인터페이스다.
type Catalog interface {
	Lookup(text string) (catalog.Entry, bool)
	IsRecommendationRequest(text string) bool
	Recommend(age int, played []string, limit int) []catalog.Entry
}

// Learner 는 추천에 쓰이는 학습자 정보다. Age <= 0 은 나이를 모르는 경우다.
type Learner struct {
	Age         int
	PlayedGames []string
}

// Request 는 텍스트 생성 요청이다. Messages 가 있으면 Prompt 는 무시된다.
type Request struct {
	Prompt   string
	Messages []llm.Message
	Learner  *Learner
}

// Result 는 텍스트 생성 결과다.
type Result struct {
	GeneratedText string
	Outcome       Outcome
}

// Service: 아동용 텍스트 응답 생성 흐름을 담당합니다.
type Service struct {
	cfg        *config.Config
	chat       ChatClient
	classifier Classifier
	moderator  Moderator
	catalog    Catalog
	prompts    *assistant.Prompts
	persona    string
	logger     *slog.Logger
}

// New: 텍스트 Service 를 생성합니다. 페르소나 프롬프트는 생성 시점에 한 번 읽습니다.
func New(
	cfg *config.Config,
	chat ChatClient,
	classifier Classifier,
	moderator Moderator,
	games Catalog,
	prompts *assistant.Prompts,
	logger *slog.Logger,
) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if chat == nil || classifier == nil || moderator == nil || games == nil || prompts == nil {
		return nil, errors.New("text service dependency is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	persona, err := prompts.Persona()
	if err != nil {
		return nil, fmt.Errorf("load persona: %w", err)
	}
	return &Service{
		cfg:        cfg,
		chat:       chat,
		classifier: classifier,
		moderator:  moderator,
		catalog:    games,
		prompts:    prompts,
		persona:    persona,
		logger:     logger,
	}, nil
}

// Generate: 요청을 단계별로 처리하고 처음으로 종료된 단계의 응답을 반환합니다.
// 어떤 단계에서 실패해도 오류 대신 고정 문구를 반환합니다.
func (s *Service) Generate(ctx context.Context, req Request) Result {
	if !s.chat.HasToken() {
		return s.finish(assistant.NoTokenMessage, OutcomeNoToken)
	}

	messages := NormalizeMessages(s.persona, req)
	latest := strings.ToLower(llm.LatestUserContent(messages))

	if s.moderator.IsBlocked(latest) {
		s.logger.Info("text_blocked")
		return s.finish(assistant.RedirectMessage, OutcomeBlocked)
	}

	if entry, ok := s.catalog.Lookup(latest); ok {
		reply, err := s.prompts.GameDescription(entry)
		if err == nil {
			s.logger.Debug("text_catalog_hit", "game", entry.CanonicalKey)
			return s.finish(reply, OutcomeCatalog)
		}
		s.logger.Warn("text_catalog_format_failed", "game", entry.CanonicalKey, "err", err)
	}

	if s.catalog.IsRecommendationRequest(latest) {
		learner := s.learner(req.Learner)
		picks := s.catalog.Recommend(learner.Age, learner.PlayedGames, s.recommendationLimit())
		reply, err := s.prompts.Recommendations(picks)
		if err == nil {
			s.logger.Debug("text_recommendation", "age", learner.Age, "count", len(picks))
			return s.finish(reply, OutcomeRecommendation)
		}
		s.logger.Warn("text_recommendation_format_failed", "err", err)
	}

	generated, err := s.chat.Chat(ctx, messages)
	if err != nil {
		s.logger.Warn("text_upstream_failed", "err", err)
		return s.finish(assistant.TryAgainMessage, OutcomeUpstreamFailed)
	}

	unsafe, err := s.isUnsafe(ctx, generated.Text)
	if err != nil {
		s.logger.Warn("text_classifier_failed", "err", err)
		return s.finish(generated.Text, OutcomeClassifierFailed)
	}
	if unsafe {
		s.logger.Warn("text_unsafe_replaced", "model", generated.Model)
		return s.finish(assistant.SafeFallbackMessage, OutcomeUnsafe)
	}

	return s.finish(generated.Text, OutcomeGenerated)
}

func (s *Service) isUnsafe(ctx context.Context, generated string) (bool, error) {
	classifierPrompt, err := s.prompts.SafetyCheck(generated)
	if err != nil {
		return false, err
	}
	verdict, err := s.classifier.Classify(ctx, classifierPrompt)
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToLower(verdict), "unsafe"), nil
}

func (s *Service) learner(input *Learner) Learner {
	out := Learner{Age: s.cfg.Learner.DefaultAge}
	if input == nil {
		return out
	}
	if input.Age > 0 {
		out.Age = input.Age
	}
	out.PlayedGames = input.PlayedGames
	return out
}

func (s *Service) recommendationLimit() int {
	if s.cfg.Learner.RecommendationLimit <= 0 {
		return defaultRecommendationLimit
	}
	return s.cfg.Learner.RecommendationLimit
}

func (s *Service) finish(text string, outcome Outcome) Result {
	metrics.TextOutcomes.WithLabelValues(string(outcome)).Inc()
	return Result{GeneratedText: text, Outcome: outcome}
}

// NormalizeMessages: 0번 위치에 페르소나 system 메시지가 오도록 대화를 정규화합니다.
// 0번이 이미 system 이면 내용을 덮어쓰고, 아니면 앞에 추가합니다.
func NormalizeMessages(persona string, req Request) []llm.Message {
	if len(req.Messages) == 0 {
		return []llm.Message{
			{Role: llm.RoleSystem, Content: persona},
			{Role: llm.RoleUser, Content: req.Prompt},
		}
	}

	out := make([]llm.Message, 0, len(req.Messages)+1)
	for _, message := range req.Messages {
		out = append(out, llm.Message{Role: llm.NormalizeRole(message.Role), Content: message.Content})
	}
	if out[0].Role == llm.RoleSystem {
		out[0].Content = persona
		return out
	}
	return append([]llm.Message{{Role: llm.RoleSystem, Content: persona}}, out...)
}
