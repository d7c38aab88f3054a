package image

import (
	"encoding/base64"
	"fmt"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/prompt"
)

// ContentTypePNG 는 기본 이미지 형식이다. 플레이스홀더 SVG 도 기존 클라이언트 호환을 위해 이 값으로 보낸다.
const ContentTypePNG = "image/png"

// transparentPixelPNG 는 1x1 투명 PNG 다.
const transparentPixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

const placeholderLabelRunes = 20

const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="512" height="512" viewBox="0 0 512 512">` +
	`<defs><linearGradient id="bg" x1="0%%" y1="0%%" x2="100%%" y2="100%%">` +
	`<stop offset="0%%" stop-color="#8b5cf6"/><stop offset="100%%" stop-color="#3b82f6"/>` +
	`</linearGradient></defs>` +
	`<rect width="512" height="512" fill="url(#bg)"/>` +
	`<circle cx="256" cy="216" r="96" fill="#ffffff" fill-opacity="0.25"/>` +
	`<text x="256" y="380" font-family="Arial, sans-serif" font-size="28" fill="#ffffff" text-anchor="middle">%s</text>` +
	`</svg>`

// PlaceholderSVG: 프롬프트 앞부분을 표시하는 결정적 SVG 를 base64 로 반환합니다.
func PlaceholderSVG(userPrompt string) string {
	svg := fmt.Sprintf(placeholderSVG, prompt.EscapeXML(placeholderLabel(userPrompt)))
	return base64.StdEncoding.EncodeToString([]byte(svg))
}

func placeholderLabel(userPrompt string) string {
	runes := []rune(userPrompt)
	if len(runes) <= placeholderLabelRunes {
		return userPrompt
	}
	return string(runes[:placeholderLabelRunes]) + "..."
}
