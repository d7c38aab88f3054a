package guard

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type rawRulepack struct {
	Version int       `yaml:"version"`
	Rules   []rawRule `yaml:"rules"`
}

type rawRule struct {
	ID      string   `yaml:"id"`
	Type    string   `yaml:"type"`
	Pattern string   `yaml:"pattern"`
	Words   []string `yaml:"words"`
}

type regexRule struct {
	ID      string
	Pattern *regexp.Regexp
}

type compiledPack struct {
	ID         string
	WordRule   *regexp.Regexp
	RegexRules []regexRule
}

func loadRulepacks(dir string, logger *slog.Logger) []compiledPack {
	paths := findRulepackFiles(dir)
	if len(paths) == 0 {
		if logger != nil {
			logger.Warn("rulepacks_not_found", "dir", dir)
		}
		return nil
	}

	packs := make([]compiledPack, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if logger != nil {
				logger.Warn("rulepack_read_failed", "path", path, "err", err)
			}
			continue
		}

		var raw rawRulepack
		if err := yaml.Unmarshal(data, &raw); err != nil {
			if logger != nil {
				logger.Warn("rulepack_parse_failed", "path", path, "err", err)
			}
			continue
		}

		id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		pack, err := compileRulepack(id, raw, logger)
		if err != nil {
			if logger != nil {
				logger.Warn("rulepack_compile_failed", "path", path, "err", err)
			}
			continue
		}
		packs = append(packs, pack)
	}

	return packs
}

func findRulepackFiles(dir string) []string {
	if strings.TrimSpace(dir) == "" {
		return nil
	}
	var files []string
	patterns := []string{"*.yml", "*.yaml"}
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}
	return files
}

func compileRulepack(id string, raw rawRulepack, logger *slog.Logger) (compiledPack, error) {
	if raw.Version == 0 {
		raw.Version = 1
	}

	var regexes []regexRule
	words := make([]string, 0)

	for _, rule := range raw.Rules {
		switch strings.ToLower(strings.TrimSpace(rule.Type)) {
		case "regex":
			if rule.ID == "" || rule.Pattern == "" {
				return compiledPack{}, fmt.Errorf("invalid regex rule")
			}
			pattern, err := regexp.Compile("(?i)" + rule.Pattern)
			if err != nil {
				if logger != nil {
					logger.Warn("rulepack_regex_invalid", "rule_id", rule.ID, "err", err)
				}
				continue
			}
			regexes = append(regexes, regexRule{ID: rule.ID, Pattern: pattern})
		case "words":
			if rule.ID == "" || len(rule.Words) == 0 {
				return compiledPack{}, fmt.Errorf("invalid words rule")
			}
			words = append(words, rule.Words...)
		default:
			return compiledPack{}, fmt.Errorf("unknown rule type: %s", rule.Type)
		}
	}

	wordRule, err := compileWordPattern(words)
	if err != nil {
		return compiledPack{}, err
	}

	return compiledPack{
		ID:         id,
		WordRule:   wordRule,
		RegexRules: regexes,
	}, nil
}

// compileWordPattern 은 단어 목록을 대소문자 무시 단어 경계 정규식 하나로 만든다.
// 긴 단어를 먼저 두어 "asshole" 이 "ass" 보다 우선 매칭되도록 한다.
func compileWordPattern(words []string) (*regexp.Regexp, error) {
	seen := make(map[string]struct{}, len(words))
	quoted := make([]string, 0, len(words))
	for _, word := range words {
		value := strings.ToLower(strings.TrimSpace(word))
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		quoted = append(quoted, value)
	}
	if len(quoted) == 0 {
		return nil, nil
	}

	slices.SortStableFunc(quoted, func(a, b string) int { return len(b) - len(a) })
	for i, value := range quoted {
		quoted[i] = regexp.QuoteMeta(value)
	}

	pattern, err := regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("compile word pattern: %w", err)
	}
	return pattern, nil
}
