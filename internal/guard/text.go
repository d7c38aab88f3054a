package guard

import (
	"strings"
	"unicode"

	"github.com/mtibben/confusables"
	"golang.org/x/text/unicode/norm"
)

// isASCIIOnly: 문자열이 ASCII만 포함하는지 확인 (Zero Allocation)
func isASCIIOnly(text string) bool {
	for i := 0; i < len(text); i++ {
		if text[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// normalizeText 는 매칭용 문자열을 만든다. 원문은 바꾸지 않는다.
func normalizeText(text string) string {
	// [Fast Path] ASCII만 포함된 경우 Skeleton 변환 불필요
	if isASCIIOnly(text) {
		return strings.ToLower(stripControlChars(text))
	}

	// NFD 입력 우회 방지: 먼저 NFC로 정규화
	nfcText := norm.NFC.String(stripControlChars(text))
	return strings.ToLower(normalizeLatinLookalikes(nfcText))
}

// normalizeLatinLookalikes: 라틴 문자와 혼동되는 문자(키릴 а, 전각 ａ 등)가 섞인 단어만
// skeleton 으로 바꾼다. 순수 비라틴 단어는 그대로 둔다.
func normalizeLatinLookalikes(text string) string {
	var result strings.Builder
	result.Grow(len(text))

	for _, word := range splitKeepingSpaces(text) {
		if !hasLatinLetter(word) && !hasFullwidth(word) {
			result.WriteString(word)
			continue
		}
		skeleton := confusables.Skeleton(word)
		result.WriteString(norm.NFKC.String(skeleton))
	}
	return result.String()
}

func splitKeepingSpaces(text string) []string {
	parts := make([]string, 0, 8)
	start := 0
	inSpace := false
	for i, r := range text {
		space := unicode.IsSpace(r)
		if i > 0 && space != inSpace {
			parts = append(parts, text[start:i])
			start = i
		}
		inSpace = space
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}

func hasLatinLetter(word string) bool {
	for _, r := range word {
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func hasFullwidth(word string) bool {
	for _, r := range word {
		if r >= 0xFF01 && r <= 0xFF5E {
			return true
		}
	}
	return false
}

// stripControlChars: 불필요한 할당 방지
func stripControlChars(text string) string {
	hasControl := false
	for _, r := range text {
		if unicode.Is(unicode.Cf, r) || unicode.Is(unicode.Cc, r) {
			hasControl = true
			break
		}
	}
	if !hasControl {
		return text
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' {
			builder.WriteRune(' ')
			continue
		}
		if unicode.Is(unicode.Cf, r) || unicode.Is(unicode.Cc, r) {
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
