package together

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/llm"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/metrics"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/upstream"
)

var (
	// ErrMissingToken 는 제공자 토큰이 비어 있을 때 반환된다.
	ErrMissingToken = errors.New("missing provider token")
	// ErrUnexpectedResponse 는 2xx 응답이지만 기대한 필드가 없을 때 반환된다.
	ErrUnexpectedResponse = errors.New("unexpected provider response")
)

const (
	chatPath  = "/v1/chat/completions"
	imagePath = "/v1/images/generations"
)

// UsageRecorder 는 채팅 토큰 사용량 기록 인터페이스다.
type UsageRecorder interface {
	Record(ctx context.Context, model string, inputTokens int64, outputTokens int64)
}

// Client 는 OpenAI 호환 Together API 클라이언트다.
// 채팅, 안전 분류, 이미지 생성을 모두 upstream.Doer 로 호출한다.
type Client struct {
	doer    upstream.Doer
	cfg     config.ProviderConfig
	token   config.TokenSource
	metrics *metrics.Store
	usage   UsageRecorder
	logger  *slog.Logger
}

// NewClient 는 Together 클라이언트를 생성한다.
func NewClient(
	doer upstream.Doer,
	cfg config.ProviderConfig,
	token config.TokenSource,
	metricsStore *metrics.Store,
	usage UsageRecorder,
	logger *slog.Logger,
) *Client {
	if token == nil {
		token = config.StaticToken("")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		doer:    doer,
		cfg:     cfg,
		token:   token,
		metrics: metricsStore,
		usage:   usage,
		logger:  logger,
	}
}

// HasToken 은 호출 시점에 토큰이 설정되어 있는지 확인한다.
func (c *Client) HasToken() bool {
	return c.token() != ""
}

// Chat 은 채팅 완성을 요청한다. 2xx 가 아니거나 본문이 비면 오류를 반환한다.
func (c *Client) Chat(ctx context.Context, messages []llm.Message) (llm.ChatResult, error) {
	start := time.Now()
	result, err := c.complete(ctx, chatRequest{
		Model:       c.cfg.ChatModel,
		Messages:    messages,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		TopP:        c.cfg.TopP,
	})
	if err != nil {
		c.metrics.RecordError(time.Since(start))
		return llm.ChatResult{}, err
	}

	c.metrics.RecordSuccess(time.Since(start), result.Usage)
	if c.usage != nil {
		c.usage.Record(ctx, result.Model, int64(result.Usage.InputTokens), int64(result.Usage.OutputTokens))
	}
	return result, nil
}

// Classify 는 안전 분류 모델에 프롬프트를 보내고 응답 본문을 반환한다.
func (c *Client) Classify(ctx context.Context, prompt string) (string, error) {
	result, err := c.complete(ctx, chatRequest{
		Model:       c.cfg.SafetyModel,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   c.cfg.SafetyMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// GenerateImage 는 후보 모델 하나로 이미지를 생성하고 base64 데이터를 반환한다.
func (c *Client) GenerateImage(ctx context.Context, candidate config.ImageCandidate, prompt string) (string, error) {
	token := c.token()
	if token == "" {
		return "", ErrMissingToken
	}

	params := ParamsFor(candidate.Fast)
	req, err := upstream.NewJSONRequest(c.endpoint(imagePath), token, imageRequest{
		Model:          candidate.ModelID,
		Prompt:         prompt,
		N:              1,
		Width:          params.Width,
		Height:         params.Height,
		Steps:          params.Steps,
		ResponseFormat: "b64_json",
	})
	if err != nil {
		return "", err
	}

	resp, err := c.doer.FetchWithRetry(ctx, req, c.retries(), c.baseDelay())
	if err != nil {
		return "", fmt.Errorf("image %s: %w", candidate.ModelID, err)
	}
	if !resp.OK() {
		return "", fmt.Errorf("image %s: %w", candidate.ModelID, upstream.NewStatusError(resp))
	}

	var decoded imageResponse
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		return "", fmt.Errorf("decode image response: %w", err)
	}
	if len(decoded.Data) == 0 || strings.TrimSpace(decoded.Data[0].B64JSON) == "" {
		return "", fmt.Errorf("image %s: %w: missing b64_json", candidate.ModelID, ErrUnexpectedResponse)
	}
	data := strings.TrimSpace(decoded.Data[0].B64JSON)
	if _, err := base64.StdEncoding.DecodeString(data); err != nil {
		return "", fmt.Errorf("image %s: %w: invalid base64", candidate.ModelID, ErrUnexpectedResponse)
	}
	return data, nil
}

func (c *Client) complete(ctx context.Context, payload chatRequest) (llm.ChatResult, error) {
	token := c.token()
	if token == "" {
		return llm.ChatResult{}, ErrMissingToken
	}

	req, err := upstream.NewJSONRequest(c.endpoint(chatPath), token, payload)
	if err != nil {
		return llm.ChatResult{}, err
	}

	resp, err := c.doer.FetchWithRetry(ctx, req, c.retries(), c.baseDelay())
	if err != nil {
		return llm.ChatResult{}, fmt.Errorf("chat %s: %w", payload.Model, err)
	}
	if !resp.OK() {
		return llm.ChatResult{}, fmt.Errorf("chat %s: %w", payload.Model, upstream.NewStatusError(resp))
	}

	var decoded chatResponse
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		return llm.ChatResult{}, fmt.Errorf("decode chat response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return llm.ChatResult{}, fmt.Errorf("chat %s: %w: no choices", payload.Model, ErrUnexpectedResponse)
	}
	text := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if text == "" {
		return llm.ChatResult{}, fmt.Errorf("chat %s: %w: empty content", payload.Model, ErrUnexpectedResponse)
	}

	result := llm.ChatResult{Text: text, Model: decoded.Model}
	if result.Model == "" {
		result.Model = payload.Model
	}
	if decoded.Usage != nil {
		result.Usage = llm.Usage{
			InputTokens:  decoded.Usage.PromptTokens,
			OutputTokens: decoded.Usage.CompletionTokens,
			TotalTokens:  decoded.Usage.TotalTokens,
		}
	}
	return result, nil
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

func (c *Client) retries() int {
	if c.cfg.RetryCount <= 0 {
		return upstream.DefaultRetries
	}
	return c.cfg.RetryCount
}

func (c *Client) baseDelay() time.Duration {
	if c.cfg.RetryBaseDelayMs <= 0 {
		return upstream.DefaultBaseDelay
	}
	return time.Duration(c.cfg.RetryBaseDelayMs) * time.Millisecond
}
