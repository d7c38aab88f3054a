package shared

import (
	"testing"
)

func TestDecodeWeaklyTyped(t *testing.T) {
	var got LearnerPayload
	err := Decode(map[string]any{
		"age":          7.0,
		"played_games": []any{"memory-galaxy", "rhythm-river"},
	}, &got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Age != 7 || len(got.PlayedGames) != 2 {
		t.Fatalf("unexpected learner: %+v", got)
	}
}

func TestDecodeValidRequiresFields(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		wantErr bool
	}{
		{name: "complete", input: map[string]any{"task_type": "chat", "input_data": "hi"}},
		{name: "missing task type", input: map[string]any{"input_data": "hi"}, wantErr: true},
		{name: "missing input data", input: map[string]any{"task_type": "chat"}, wantErr: true},
		{name: "empty input data", input: map[string]any{"task_type": "chat", "input_data": ""}, wantErr: true},
		{name: "wrong learner type", input: map[string]any{"task_type": "chat", "input_data": "hi", "learner": "seven"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got TaskRequest
			err := DecodeValid(tt.input, &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeValid() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
