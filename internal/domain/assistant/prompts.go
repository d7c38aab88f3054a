package assistant

import (
	"embed"
	"fmt"
	"strings"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/domain/catalog"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/prompt"
)

//go:embed prompts/*.yml
var promptsFS embed.FS

// Prompts 는 학습 도우미 프롬프트 모음이다.
type Prompts struct {
	bundle *prompt.Bundle
}

// NewPrompts: 학습 도우미 프롬프트를 로드합니다.
func NewPrompts() (*Prompts, error) {
	bundle, err := prompt.LoadBundle(promptsFS, "prompts", "assistant")
	if err != nil {
		return nil, fmt.Errorf("load assistant prompts: %w", err)
	}
	return &Prompts{bundle: bundle}, nil
}

// Persona: 대화 첫 위치에 고정되는 시스템 프롬프트를 반환합니다.
func (p *Prompts) Persona() (string, error) {
	system, err := p.bundle.Field("persona", "system")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(system), nil
}

// SafetyCheck: 생성 결과를 분류기에 보낼 프롬프트를 만듭니다.
func (p *Prompts) SafetyCheck(text string) (string, error) {
	formatted, err := p.bundle.Render("safety", "user", map[string]string{
		"text": prompt.WrapXML("reply", text),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(formatted), nil
}

// GameDescription: 카탈로그 항목 설명 응답을 만듭니다.
func (p *Prompts) GameDescription(entry catalog.Entry) (string, error) {
	return p.bundle.Render("catalog", "game", entryValues(entry))
}

// Recommendations: 추천 목록 응답을 만듭니다.
func (p *Prompts) Recommendations(entries []catalog.Entry) (string, error) {
	intro, err := p.bundle.Field("catalog", "recommendation_intro")
	if err != nil {
		return "", err
	}
	outro, err := p.bundle.Field("catalog", "recommendation_outro")
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(entries)+2)
	lines = append(lines, intro)
	for _, entry := range entries {
		line, err := p.bundle.Render("catalog", "recommendation_item", entryValues(entry))
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	lines = append(lines, outro)
	return strings.Join(lines, "\n"), nil
}

func entryValues(entry catalog.Entry) map[string]string {
	return map[string]string{
		"name":        entry.DisplayName,
		"category":    entry.Category,
		"description": entry.Description,
		"skills":      entry.Skills,
		"age_range":   entry.AgeRange,
	}
}
