package prompt

import (
	"fmt"
	"io/fs"
	"slices"
)

// Entry 는 YAML 파일 하나의 필드 모음이다.
type Entry map[string]string

// Bundle: 한 도메인의 프롬프트 파일을 이름(파일명에서 확장자 제외)으로 묶어 둡니다.
type Bundle struct {
	label   string
	entries map[string]Entry
}

// LoadBundle: fsys 의 dir 에 있는 *.yml, *.yaml 을 읽어 Bundle 을 만듭니다.
// label 은 오류 메시지 앞에 붙는 도메인 이름입니다.
func LoadBundle(fsys fs.FS, dir string, label string) (*Bundle, error) {
	entries, err := LoadYAMLDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("%s prompts: %w", label, err)
	}
	return &Bundle{label: label, entries: entries}, nil
}

// Names 는 로드된 프롬프트 이름을 정렬해 반환한다.
func (b *Bundle) Names() []string {
	if b == nil {
		return nil
	}
	names := make([]string, 0, len(b.entries))
	for name := range b.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Entry 는 name 프롬프트를 조회한다.
func (b *Bundle) Entry(name string) (Entry, error) {
	if b == nil || b.entries == nil {
		return nil, fmt.Errorf("prompts not initialized")
	}
	entry, ok := b.entries[name]
	if !ok {
		return nil, fmt.Errorf("%s prompt not found: %s", b.label, name)
	}
	return entry, nil
}

// Field: name 프롬프트의 key 필드를 조회합니다. 오류에는 name.key 가 담깁니다.
func (b *Bundle) Field(name string, key string) (string, error) {
	entry, err := b.Entry(name)
	if err != nil {
		return "", err
	}
	value, ok := entry[key]
	if !ok {
		return "", fmt.Errorf("%s prompt field missing: %s.%s", b.label, name, key)
	}
	return value, nil
}

// Render 는 name.key 필드를 템플릿으로 보고 values 로 치환한다.
func (b *Bundle) Render(name string, key string, values map[string]string) (string, error) {
	template, err := b.Field(name, key)
	if err != nil {
		return "", err
	}
	out, err := Render(template, values)
	if err != nil {
		return "", fmt.Errorf("format %s.%s: %w", name, key, err)
	}
	return out, nil
}
