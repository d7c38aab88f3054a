package shared

import (
	"errors"
	"testing"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/llm"
)

func TestParseTaskRequestStringInput(t *testing.T) {
	req, err := ParseTaskRequest([]byte(`{"task_type":"chat","input_data":"hello","learner":{"age":8,"played_games":["focus-forest"]}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.TaskType != "chat" {
		t.Fatalf("unexpected task type: %q", req.TaskType)
	}
	if req.Learner == nil || req.Learner.Age != 8 || req.Learner.PlayedGames[0] != "focus-forest" {
		t.Fatalf("unexpected learner: %+v", req.Learner)
	}

	input, err := req.Input()
	if err != nil {
		t.Fatalf("unexpected input error: %v", err)
	}
	if input.Prompt != "hello" || input.Messages != nil {
		t.Fatalf("unexpected input: %+v", input)
	}
}

func TestParseTaskRequestConversationInput(t *testing.T) {
	body := `{"task_type":"conversation","input_data":{"messages":[
		{"role":"system","content":"be nice"},
		{"role":"user","content":"first"},
		{"role":"assistant","content":"reply"},
		{"role":"kid","content":"draw a cat"}
	]}}`
	req, err := ParseTaskRequest([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	input, err := req.Input()
	if err != nil {
		t.Fatalf("unexpected input error: %v", err)
	}
	if len(input.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(input.Messages))
	}
	if input.Messages[3].Role != llm.RoleUser {
		t.Fatalf("expected unknown role to become user, got %q", input.Messages[3].Role)
	}
	if input.Prompt != "draw a cat" {
		t.Fatalf("expected latest user content, got %q", input.Prompt)
	}
}

func TestParseTaskRequestMalformed(t *testing.T) {
	bodies := []string{
		`not json`,
		`[1,2,3]`,
		`null`,
		`{"input_data":"hi"}`,
		`{"task_type":"chat"}`,
	}
	for _, body := range bodies {
		if _, err := ParseTaskRequest([]byte(body)); err == nil {
			t.Fatalf("expected error for %s", body)
		}
	}
}

func TestTaskInputRejectsUnsupportedShapes(t *testing.T) {
	tests := []struct {
		name string
		data any
	}{
		{name: "number", data: 42.0},
		{name: "object without messages", data: map[string]any{"prompt": "hi"}},
		{name: "messages not a list", data: map[string]any{"messages": "hi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TaskRequest{TaskType: "chat", InputData: tt.data}.Input()
			if !errors.Is(err, ErrInvalidInputData) {
				t.Fatalf("expected invalid input data, got %v", err)
			}
		})
	}
}

func TestParseTaskRequestKeepsTaskTypeVerbatim(t *testing.T) {
	req, err := ParseTaskRequest([]byte(`{"task_type":" chat ","input_data":"hello"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.TaskType != " chat " {
		t.Fatalf("expected untouched task type, got %q", req.TaskType)
	}
}

func TestTrimRunes(t *testing.T) {
	if TrimRunes("abcdef", 3) != "abc" {
		t.Fatalf("expected 'abc'")
	}
	if TrimRunes("abc", 5) != "abc" {
		t.Fatalf("expected 'abc' for shorter string")
	}
	if TrimRunes("abc", 0) != "" {
		t.Fatalf("expected empty for maxRunes=0")
	}
	if TrimRunes("가나다라마바", 3) != "가나다" {
		t.Fatalf("expected '가나다'")
	}
}
