package llm

import "strings"

// 대화 역할 상수.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message: 대화 메시지 항목입니다.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NormalizeRole: 알 수 없는 역할은 user 로 취급합니다.
func NormalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleSystem:
		return RoleSystem
	case RoleAssistant:
		return RoleAssistant
	default:
		return RoleUser
	}
}

// LatestUserContent: 마지막 user 메시지 본문을 반환합니다.
func LatestUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// Usage: 토큰 사용량 정보를 담습니다.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// ChatResult: 채팅 응답과 사용량을 담습니다.
type ChatResult struct {
	Text  string
	Model string
	Usage Usage
}
