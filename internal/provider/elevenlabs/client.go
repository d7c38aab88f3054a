package elevenlabs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/upstream"
)

var (
	// ErrMissingToken 는 음성 제공자 토큰이 비어 있을 때 반환된다.
	ErrMissingToken = errors.New("missing voice provider token")
	// ErrEmptyAudio 는 2xx 응답이지만 오디오가 비어 있을 때 반환된다.
	ErrEmptyAudio = errors.New("empty audio response")
)

// ContentTypeMPEG 는 합성 결과 오디오 형식이다.
const ContentTypeMPEG = "audio/mpeg"

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type speechRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Audio 는 합성된 오디오다.
type Audio struct {
	Data        []byte
	ContentType string
}

// Client 는 ElevenLabs TTS 클라이언트다. 재시도하지 않는다.
type Client struct {
	doer   upstream.Doer
	cfg    config.VoiceConfig
	token  config.TokenSource
	logger *slog.Logger
}

// NewClient 는 TTS 클라이언트를 생성한다.
func NewClient(doer upstream.Doer, cfg config.VoiceConfig, token config.TokenSource, logger *slog.Logger) *Client {
	if token == nil {
		token = config.StaticToken("")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{doer: doer, cfg: cfg, token: token, logger: logger}
}

// HasToken 은 호출 시점에 토큰이 설정되어 있는지 확인한다.
func (c *Client) HasToken() bool {
	return c.token() != ""
}

// Synthesize 는 text 를 한 번의 호출로 음성으로 변환한다.
func (c *Client) Synthesize(ctx context.Context, text string) (Audio, error) {
	token := c.token()
	if token == "" {
		return Audio{}, ErrMissingToken
	}

	body, err := json.Marshal(speechRequest{
		Text:    text,
		ModelID: c.cfg.ModelID,
		VoiceSettings: voiceSettings{
			Stability:       c.cfg.Stability,
			SimilarityBoost: c.cfg.SimilarityBoost,
		},
	})
	if err != nil {
		return Audio{}, fmt.Errorf("encode speech request: %w", err)
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	header.Set("Accept", ContentTypeMPEG)
	header.Set("xi-api-key", token)

	resp, err := c.doer.Do(ctx, upstream.Request{
		Method: http.MethodPost,
		URL:    c.endpoint(),
		Header: header,
		Body:   body,
	})
	if err != nil {
		c.logger.Warn("tts_request_failed", "voice_id", c.cfg.VoiceID, "err", err)
		return Audio{}, fmt.Errorf("text to speech: %w", err)
	}
	if !resp.OK() {
		c.logger.Warn("tts_request_failed", "voice_id", c.cfg.VoiceID, "status", resp.StatusCode)
		return Audio{}, fmt.Errorf("text to speech: %w", upstream.NewStatusError(resp))
	}
	if len(resp.Body) == 0 {
		c.logger.Warn("tts_empty_audio", "voice_id", c.cfg.VoiceID)
		return Audio{}, ErrEmptyAudio
	}

	return Audio{Data: resp.Body, ContentType: ContentTypeMPEG}, nil
}

func (c *Client) endpoint() string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/text-to-speech/" + url.PathEscape(c.cfg.VoiceID)
}
