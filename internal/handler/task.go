package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/handler/shared"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/httperror"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/metrics"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/middleware"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/usecase/image"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/usecase/text"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/usecase/voice"
)

const (
	// TaskPath 는 태스크 엔드포인트 경로다.
	TaskPath = "/api"

	maxTaskBodyBytes = 4 << 20

	testMessage = "NeuraPlay AI proxy is working"
)

// TaskKind 는 요청을 처리할 핸들러 종류다.
type TaskKind string

// 핸들러 종류
const (
	TaskKindTest  TaskKind = "test"
	TaskKindText  TaskKind = "text"
	TaskKindImage TaskKind = "image"
	TaskKindVoice TaskKind = "voice"
)

// supportedTaskTypes 는 허용 task_type 목록이다. 400 응답에 이 순서 그대로 노출된다.
var supportedTaskTypes = []string{
	"test", "summarization", "text", "chat", "conversation", "story", "report", "image", "voice",
}

var taskAliases = map[string]TaskKind{
	"test":          TaskKindTest,
	"summarization": TaskKindText,
	"text":          TaskKindText,
	"chat":          TaskKindText,
	"conversation":  TaskKindText,
	"story":         TaskKindText,
	"report":        TaskKindText,
	"image":         TaskKindImage,
	"voice":         TaskKindVoice,
}

// ResolveTaskType 은 task_type 별칭을 핸들러 종류로 바꾼다.
func ResolveTaskType(taskType string) (TaskKind, bool) {
	kind, ok := taskAliases[taskType]
	return kind, ok
}

// SupportedTaskTypes 는 허용 task_type 목록의 복사본을 반환한다.
func SupportedTaskTypes() []string {
	return append([]string(nil), supportedTaskTypes...)
}

// TextGenerator 는 텍스트 태스크 처리기다.
type TextGenerator interface {
	Generate(ctx context.Context, req text.Request) text.Result
}

// ImageGenerator 는 이미지 태스크 처리기다.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) image.Result
}

// VoiceGenerator 는 음성 태스크 처리기다.
type VoiceGenerator interface {
	Generate(ctx context.Context, text string) voice.Result
}

// GeneratedText 는 텍스트 태스크 응답 항목이다.
type GeneratedText struct {
	GeneratedText string `json:"generated_text"`
}

// TestResponse 는 test 태스크 응답이다.
type TestResponse struct {
	Message   string         `json:"message"`
	Timestamp string         `json:"timestamp"`
	Providers ProviderTokens `json:"providers"`
}

// ProviderTokens 는 공급자 토큰 존재 여부다. 값은 노출하지 않는다.
type ProviderTokens struct {
	ChatToken  bool `json:"chat_token"`
	VoiceToken bool `json:"voice_token"`
}

// TaskHandler 는 task_type 에 따라 요청을 정확히 하나의 처리기로 보낸다.
type TaskHandler struct {
	text       TextGenerator
	image      ImageGenerator
	voice      VoiceGenerator
	chatToken  config.TokenSource
	voiceToken config.TokenSource
	logger     *slog.Logger
	now        func() time.Time
}

// NewTaskHandler 는 태스크 핸들러를 생성한다.
func NewTaskHandler(
	cfg *config.Config,
	textService TextGenerator,
	imageService ImageGenerator,
	voiceService VoiceGenerator,
	logger *slog.Logger,
) (*TaskHandler, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if textService == nil || imageService == nil || voiceService == nil {
		return nil, errors.New("task service is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		text:       textService,
		image:      imageService,
		voice:      voiceService,
		chatToken:  config.EnvToken(cfg.Provider.TokenEnv),
		voiceToken: config.EnvToken(cfg.Voice.TokenEnv),
		logger:     logger,
		now:        time.Now,
	}, nil
}

// RegisterRoutes 는 태스크 엔드포인트를 모든 메서드로 등록한다.
func (h *TaskHandler) RegisterRoutes(router gin.IRoutes) {
	router.Any(TaskPath, h.handle)
	router.Any(middleware.NetlifyFunctionPath, h.handle)
}

func (h *TaskHandler) handle(c *gin.Context) {
	if c.Request.Method == http.MethodOptions {
		shared.WriteEmpty(c)
		return
	}

	label := "invalid"
	defer func() {
		metrics.TaskRequests.WithLabelValues(label, strconv.Itoa(c.Writer.Status())).Inc()
	}()

	req, err := h.readRequest(c)
	if err != nil {
		h.logger.Warn("task_malformed", "request_id", middleware.GetRequestID(c), "err", err)
		writeError(c, httperror.NewMalformedRequest(err))
		return
	}

	kind, ok := ResolveTaskType(req.TaskType)
	if !ok {
		label = "unsupported"
		h.logger.Warn("task_unsupported", "request_id", middleware.GetRequestID(c), "task_type", shared.TrimRunes(req.TaskType, 40))
		writeError(c, httperror.NewUnsupportedTaskType(req.TaskType, SupportedTaskTypes()))
		return
	}
	label = req.TaskType
	c.Set(middleware.TaskTypeKey, req.TaskType)

	if kind == TaskKindTest {
		writeContent(c, TestResponse{
			Message:   testMessage,
			Timestamp: h.now().UTC().Format(time.RFC3339),
			Providers: ProviderTokens{
				ChatToken:  h.chatToken() != "",
				VoiceToken: h.voiceToken() != "",
			},
		})
		return
	}

	input, err := req.Input()
	if err != nil {
		h.logger.Warn("task_malformed", "request_id", middleware.GetRequestID(c), "task_type", req.TaskType, "err", err)
		writeError(c, httperror.NewMalformedRequest(err))
		return
	}

	ctx := c.Request.Context()
	switch kind {
	case TaskKindText:
		result := h.text.Generate(ctx, text.Request{
			Prompt:   input.Prompt,
			Messages: input.Messages,
			Learner:  toLearner(req.Learner),
		})
		writeContent(c, []GeneratedText{{GeneratedText: result.GeneratedText}})
	case TaskKindImage:
		writeContent(c, h.image.Generate(ctx, input.Prompt))
	case TaskKindVoice:
		writeContent(c, h.voice.Generate(ctx, input.Prompt))
	}
}

func (h *TaskHandler) readRequest(c *gin.Context) (shared.TaskRequest, error) {
	if c.Request.Body == nil {
		return shared.TaskRequest{}, errors.New("request body is empty")
	}
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxTaskBodyBytes))
	if err != nil {
		return shared.TaskRequest{}, fmt.Errorf("read body: %w", err)
	}
	return shared.ParseTaskRequest(body)
}

func toLearner(payload *shared.LearnerPayload) *text.Learner {
	if payload == nil {
		return nil
	}
	return &text.Learner{
		Age:         payload.Age,
		PlayedGames: append([]string(nil), payload.PlayedGames...),
	}
}
