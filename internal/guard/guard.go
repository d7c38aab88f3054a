package guard

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/cache"
	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
)

const builtinPackID = "builtin"

// ContentGuard: 아동용 대화 입력의 금칙어를 검사합니다.
type ContentGuard struct {
	cfg    *config.Config
	logger *slog.Logger
	packs  []compiledPack
	cache  *cache.TTLCache[string, Evaluation]
	group  singleflight.Group
}

// NewGuard: 내장 금칙어와 선택적 rulepack 으로 가드를 생성합니다.
// cfg.Guard.Enabled 는 rulepack 로딩만 제어합니다.
func NewGuard(cfg *config.Config, logger *slog.Logger) (*ContentGuard, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	cacheTTL := time.Duration(cfg.Guard.CacheTTLSeconds) * time.Second
	guard := &ContentGuard{
		cfg:    cfg,
		logger: logger,
		cache:  cache.NewTTLCache[string, Evaluation](cfg.Guard.CacheMaxSize, cacheTTL),
	}

	builtin, err := compileWordPattern(defaultBlockedWords)
	if err != nil {
		return nil, fmt.Errorf("compile builtin words: %w", err)
	}
	guard.packs = append(guard.packs, compiledPack{ID: builtinPackID, WordRule: builtin})

	if cfg.Guard.Enabled {
		guard.loadRulepacks()
	}

	return guard, nil
}

// Evaluate: 입력 문자열을 평가합니다. 내장 금칙어는 설정과 무관하게 항상 검사합니다.
func (g *ContentGuard) Evaluate(input string) Evaluation {
	if g == nil {
		return Evaluation{}
	}

	if cached, ok := g.cache.Get(input); ok {
		return cached
	}

	value, _, _ := g.group.Do(input, func() (any, error) {
		result := g.evaluateInternal(input)
		g.cache.Set(input, result)
		return result, nil
	})

	if evaluation, ok := value.(Evaluation); ok {
		return evaluation
	}
	return Evaluation{}
}

// EnsureSafe: 차단 대상 입력을 오류로 반환합니다.
func (g *ContentGuard) EnsureSafe(input string) error {
	evaluation := g.Evaluate(input)
	if evaluation.Blocked() {
		return &BlockedError{Terms: evaluation.Terms()}
	}
	return nil
}

// IsBlocked: 입력이 차단 대상인지 여부를 반환합니다.
func (g *ContentGuard) IsBlocked(input string) bool {
	return g.Evaluate(input).Blocked()
}

func (g *ContentGuard) loadRulepacks() {
	dir := strings.TrimSpace(g.cfg.Guard.RulepacksDir)
	if dir == "" {
		executable, err := os.Executable()
		if err == nil {
			fallback := filepath.Join(filepath.Dir(executable), "rulepacks")
			if len(findRulepackFiles(fallback)) > 0 {
				dir = fallback
			}
		}
	}
	if dir != "" {
		g.packs = append(g.packs, loadRulepacks(dir, g.logger)...)
	}

	if g.logger != nil {
		g.logger.Info("guard_ready", "packs", len(g.packs), "builtin_words", len(defaultBlockedWords))
	}
}

func (g *ContentGuard) evaluateInternal(input string) Evaluation {
	normalized := normalizeText(input)
	hits := make([]Match, 0)

	for _, pack := range g.packs {
		if pack.WordRule != nil {
			for _, term := range pack.WordRule.FindAllString(normalized, -1) {
				hits = append(hits, Match{ID: "word:" + pack.ID, Term: strings.ToLower(term)})
			}
		}
		for _, rule := range pack.RegexRules {
			if term := rule.Pattern.FindString(normalized); term != "" {
				hits = append(hits, Match{ID: rule.ID, Term: term})
			}
		}
	}

	if len(hits) > 0 && g.logger != nil {
		g.logger.Warn("guard_blocked", "hits", len(hits), "input", trimForLog(input))
	}
	return Evaluation{Hits: hits}
}

func trimForLog(value string) string {
	runes := []rune(strings.TrimSpace(value))
	if len(runes) <= 50 {
		return string(runes)
	}
	return string(runes[:50])
}
