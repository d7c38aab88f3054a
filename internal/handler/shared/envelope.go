package shared

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/llm"
)

// ErrInvalidInputData 는 input_data 가 문자열도 대화 객체도 아닐 때의 에러다.
var ErrInvalidInputData = errors.New("input_data must be a string or an object with messages")

// TaskRequest 는 태스크 엔드포인트 요청 봉투다.
type TaskRequest struct {
	TaskType  string          `json:"task_type" validate:"required"`
	InputData any             `json:"input_data" validate:"required"`
	Learner   *LearnerPayload `json:"learner"`
}

// LearnerPayload 는 추천에 쓰는 학습자 정보다.
type LearnerPayload struct {
	Age         int      `json:"age"`
	PlayedGames []string `json:"played_games"`
}

// ConversationPayload 는 객체 형태 input_data 다.
type ConversationPayload struct {
	Messages []llm.Message `json:"messages" validate:"required"`
}

// TaskInput 은 input_data 를 해석한 결과다.
// 문자열 입력이면 Messages 가 nil 이고, 대화 입력이면 Prompt 는 마지막 user 메시지다.
type TaskInput struct {
	Prompt   string
	Messages []llm.Message
}

// ParseTaskRequest 는 요청 본문을 봉투로 해석하고 필수 필드를 검사한다.
func ParseTaskRequest(body []byte) (TaskRequest, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return TaskRequest{}, fmt.Errorf("parse body: %w", err)
	}

	var req TaskRequest
	if err := DecodeValid(raw, &req); err != nil {
		return TaskRequest{}, err
	}
	return req, nil
}

// Input 은 input_data 를 문자열 또는 대화 객체로 해석한다.
func (r TaskRequest) Input() (TaskInput, error) {
	switch value := r.InputData.(type) {
	case string:
		if value == "" {
			return TaskInput{}, ErrInvalidInputData
		}
		return TaskInput{Prompt: value}, nil
	case map[string]any:
		var payload ConversationPayload
		if err := DecodeValid(value, &payload); err != nil {
			return TaskInput{}, fmt.Errorf("%w: %w", ErrInvalidInputData, err)
		}
		for i := range payload.Messages {
			payload.Messages[i].Role = llm.NormalizeRole(payload.Messages[i].Role)
		}
		return TaskInput{
			Prompt:   llm.LatestUserContent(payload.Messages),
			Messages: payload.Messages,
		}, nil
	default:
		return TaskInput{}, ErrInvalidInputData
	}
}
