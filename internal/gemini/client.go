package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
)

var (
	// ErrMissingAPIKey 는 Gemini API 키가 없을 때 반환된다.
	ErrMissingAPIKey = errors.New("missing gemini api key")
	// ErrInvalidModel 는 지원하지 않는 모델일 때 반환된다.
	ErrInvalidModel = errors.New("invalid model")
	// ErrEmptyResponse 는 분류 응답이 비었을 때 반환된다.
	ErrEmptyResponse = errors.New("empty gemini response")
)

const classifierMaxOutputTokens = 16

// Client 는 Gemini 기반 안전 분류기다. 여러 API 키를 순환 사용한다.
type Client struct {
	cfg       *config.Config
	mu        sync.Mutex
	clients   map[string]*genai.Client
	apiKeys   []string
	apiKeyIdx int
}

// NewClient 는 Gemini 분류기를 생성한다.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	return &Client{
		cfg:     cfg,
		clients: make(map[string]*genai.Client),
		apiKeys: cfg.Gemini.APIKeys,
	}, nil
}

// Classify 는 분류 프롬프트를 보내고 모델 응답 본문을 반환한다.
func (c *Client) Classify(ctx context.Context, prompt string) (string, error) {
	model, err := c.resolveModel()
	if err != nil {
		return "", err
	}

	client, err := c.selectClient(ctx)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	response, err := client.Models.GenerateContent(ctx, model, contents, buildGenerateConfig())
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(strings.Join(extractParts(response), ""))
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (c *Client) selectClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.apiKeys) == 0 {
		return nil, ErrMissingAPIKey
	}

	key := c.apiKeys[c.apiKeyIdx%len(c.apiKeys)]
	c.apiKeyIdx++
	if client, ok := c.clients[key]; ok {
		return client, nil
	}

	timeout := time.Duration(c.cfg.Gemini.TimeoutSeconds) * time.Second
	client, err := genai.NewClient(context.WithoutCancel(ctx), &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			Timeout: genai.Ptr(timeout),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	c.clients[key] = client
	return client, nil
}

func (c *Client) resolveModel() (string, error) {
	model := strings.TrimSpace(c.cfg.Gemini.Model)
	if model == "" || !strings.HasPrefix(strings.ToLower(model), "gemini") {
		return model, ErrInvalidModel
	}
	return model, nil
}

// buildGenerateConfig 는 결정적인 짧은 판정을 위해 temperature 0 을 사용한다.
func buildGenerateConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(0)),
		MaxOutputTokens: classifierMaxOutputTokens,
	}
}

func extractParts(response *genai.GenerateContentResponse) []string {
	if response == nil || len(response.Candidates) == 0 {
		return nil
	}
	content := response.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return nil
	}

	texts := make([]string, 0, len(content.Parts))
	for _, part := range content.Parts {
		if part == nil || part.Text == "" || part.Thought {
			continue
		}
		texts = append(texts, part.Text)
	}
	return texts
}
