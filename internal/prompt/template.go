package prompt

import (
	"fmt"
	"strings"
)

// segment 은 템플릿을 쪼갠 조각이다. key 가 비어 있으면 literal 이다.
type segment struct {
	literal string
	key     string
}

// parse 는 {key} 치환 자리와 {{ }} 이스케이프를 해석한다.
func parse(template string) ([]segment, error) {
	var (
		segments []segment
		literal  strings.Builder
	)
	flush := func() {
		if literal.Len() > 0 {
			segments = append(segments, segment{literal: literal.String()})
			literal.Reset()
		}
	}

	for rest := template; rest != ""; {
		switch {
		case strings.HasPrefix(rest, "{{"):
			literal.WriteByte('{')
			rest = rest[2:]
		case strings.HasPrefix(rest, "}}"):
			literal.WriteByte('}')
			rest = rest[2:]
		case rest[0] == '}':
			return nil, fmt.Errorf("unexpected '}' at offset %d", len(template)-len(rest))
		case rest[0] == '{':
			end := strings.IndexByte(rest, '}')
			if end < 0 {
				return nil, fmt.Errorf("unclosed '{' at offset %d", len(template)-len(rest))
			}
			if end == 1 {
				return nil, fmt.Errorf("empty placeholder at offset %d", len(template)-len(rest))
			}
			flush()
			segments = append(segments, segment{key: rest[1:end]})
			rest = rest[end+1:]
		default:
			next := strings.IndexAny(rest, "{}")
			if next < 0 {
				next = len(rest)
			}
			literal.WriteString(rest[:next])
			rest = rest[next:]
		}
	}
	flush()
	return segments, nil
}

// Render: 템플릿의 {key} 를 values 로 치환합니다. 값이 없는 키는 오류입니다.
func Render(template string, values map[string]string) (string, error) {
	segments, err := parse(template)
	if err != nil {
		return "", fmt.Errorf("invalid template: %w", err)
	}

	var out strings.Builder
	out.Grow(len(template))
	for _, seg := range segments {
		if seg.key == "" {
			out.WriteString(seg.literal)
			continue
		}
		value, ok := values[seg.key]
		if !ok {
			return "", fmt.Errorf("missing template value for %q", seg.key)
		}
		out.WriteString(value)
	}
	return out.String(), nil
}

// RequireStatic 는 system 프롬프트에 치환 자리가 없는지 확인한다.
// 페르소나처럼 대화 맨 앞에 고정되는 문구는 요청 값으로 바뀌면 안 된다.
func RequireStatic(name string, text string) error {
	segments, err := parse(text)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	for _, seg := range segments {
		if seg.key != "" {
			return fmt.Errorf("%s: static prompt has placeholder %q", name, seg.key)
		}
	}
	return nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML 은 XML 텍스트와 속성 값에 넣을 수 있게 이스케이프한다.
func EscapeXML(value string) string {
	return xmlEscaper.Replace(value)
}

// WrapXML 은 사용자 입력을 태그로 감싸 분류기 지시문과 구분한다.
func WrapXML(tag string, value string) string {
	return fmt.Sprintf("<%s>%s</%s>", tag, EscapeXML(value), tag)
}
