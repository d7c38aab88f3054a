package together

import "github.com/Neuraplayapp/Neuraplayv8-sub000/internal/llm"

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Steps          int    `json:"steps"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// ImageParams 는 후보 종류별 생성 파라미터다.
type ImageParams struct {
	Steps  int
	Width  int
	Height int
}

// ParamsFor: fast 후보는 적은 step 과 작은 해상도를 사용합니다.
func ParamsFor(fast bool) ImageParams {
	if fast {
		return ImageParams{Steps: 4, Width: 1024, Height: 768}
	}
	return ImageParams{Steps: 20, Width: 1024, Height: 1024}
}
