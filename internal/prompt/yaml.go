package prompt

import (
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// staticKeys 는 치환 자리를 허용하지 않는 필드다.
var staticKeys = []string{"system"}

// LoadYAMLEntry 는 프롬프트 YAML 파일 하나를 읽는다.
// 값은 스칼라만 허용하며 숫자나 불리언은 문자열로 바꾼다.
func LoadYAMLEntry(fsys fs.FS, filePath string) (Entry, error) {
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("read prompt file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse prompt yaml %s: %w", filePath, err)
	}

	entry := make(Entry, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			entry[key] = ""
		case map[string]any, []any:
			return nil, fmt.Errorf("%s: field %q must be a scalar", filePath, key)
		default:
			entry[key] = fmt.Sprint(v)
		}
	}

	for _, key := range staticKeys {
		if text := entry[key]; strings.TrimSpace(text) != "" {
			if err := RequireStatic(filePath+"#"+key, text); err != nil {
				return nil, err
			}
		}
	}
	return entry, nil
}

// LoadYAMLDir 는 dir 의 *.yml, *.yaml 을 파일명 순으로 읽는다.
// 확장자만 다른 같은 이름의 파일이 있으면 오류다.
func LoadYAMLDir(fsys fs.FS, dir string) (map[string]Entry, error) {
	var paths []string
	for _, pattern := range []string{"*.yml", "*.yaml"} {
		matches, err := fs.Glob(fsys, path.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob prompt dir: %w", err)
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)

	entries := make(map[string]Entry, len(paths))
	for _, filePath := range paths {
		name := strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))
		if _, dup := entries[name]; dup {
			return nil, fmt.Errorf("duplicate prompt name %q in %s", name, dir)
		}
		entry, err := LoadYAMLEntry(fsys, filePath)
		if err != nil {
			return nil, err
		}
		entries[name] = entry
	}
	return entries, nil
}
