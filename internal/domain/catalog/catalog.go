package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/goccy/go-json"
)

//go:embed games.json
var gamesJSON []byte

// Entry: 게임 카탈로그 항목입니다. 읽기 전용이며 선언 순서가 조회 우선순위입니다.
type Entry struct {
	CanonicalKey string   `json:"canonical_key"`
	DisplayName  string   `json:"display_name"`
	Aliases      []string `json:"aliases"`
	Description  string   `json:"description"`
	Skills       string   `json:"skills"`
	AgeRange     string   `json:"age_range"`
	Category     string   `json:"category"`
}

// AgeBounds: "5-10" 형식의 연령 범위를 해석합니다.
func (e Entry) AgeBounds() (int, int, bool) {
	low, high, found := strings.Cut(strings.TrimSpace(e.AgeRange), "-")
	if !found {
		return 0, 0, false
	}
	minAge, err := strconv.Atoi(strings.TrimSpace(low))
	if err != nil {
		return 0, 0, false
	}
	maxAge, err := strconv.Atoi(strings.TrimSpace(high))
	if err != nil || maxAge < minAge {
		return 0, 0, false
	}
	return minAge, maxAge, true
}

// FitsAge: age 가 범위 안인지 확인합니다. age <= 0 은 나이를 모르는 경우로 항상 허용합니다.
func (e Entry) FitsAge(age int) bool {
	if age <= 0 {
		return true
	}
	minAge, maxAge, ok := e.AgeBounds()
	if !ok {
		return false
	}
	return age >= minAge && age <= maxAge
}

// Catalog 는 게임 항목과 이름/의도 매처를 보관한다. 생성 후 변경되지 않는다.
type Catalog struct {
	entries []Entry
	names   *ahocorasick.Matcher
	owners  []int
	intents *ahocorasick.Matcher
}

// Load: 내장 카탈로그와 기본 추천 의도 문구로 카탈로그를 만듭니다.
func Load() (*Catalog, error) {
	var entries []Entry
	if err := json.Unmarshal(gamesJSON, &entries); err != nil {
		return nil, fmt.Errorf("decode game catalog: %w", err)
	}
	return New(entries, DefaultIntentPhrases())
}

// New: 주어진 항목과 의도 문구로 카탈로그를 만듭니다.
func New(entries []Entry, intentPhrases []string) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, errors.New("game catalog is empty")
	}

	patterns := make([][]byte, 0, len(entries)*4)
	owners := make([]int, 0, len(entries)*4)
	for idx, entry := range entries {
		if strings.TrimSpace(entry.CanonicalKey) == "" {
			return nil, fmt.Errorf("catalog entry %d: missing canonical key", idx)
		}
		for _, name := range entry.names() {
			patterns = append(patterns, []byte(name))
			owners = append(owners, idx)
		}
	}

	return &Catalog{
		entries: slices.Clone(entries),
		names:   ahocorasick.NewMatcher(patterns),
		owners:  owners,
		intents: newPhraseMatcher(intentPhrases),
	}, nil
}

// names 는 canonical key 를 먼저, 이어서 별칭을 소문자로 반환한다.
func (e Entry) names() []string {
	out := make([]string, 0, len(e.Aliases)+1)
	out = append(out, strings.ToLower(strings.TrimSpace(e.CanonicalKey)))
	for _, alias := range e.Aliases {
		value := strings.ToLower(strings.TrimSpace(alias))
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}

// Entries: 선언 순서대로 항목 사본을 반환합니다.
func (c *Catalog) Entries() []Entry {
	return slices.Clone(c.entries)
}

// Lookup: 입력에 이름이나 별칭이 포함된 첫 번째 항목을 찾습니다.
func (c *Catalog) Lookup(text string) (Entry, bool) {
	lowered := strings.ToLower(text)
	if strings.TrimSpace(lowered) == "" {
		return Entry{}, false
	}

	best := -1
	for _, hit := range c.names.MatchThreadSafe([]byte(lowered)) {
		owner := c.owners[hit]
		if best < 0 || owner < best {
			best = owner
		}
	}
	if best < 0 {
		return Entry{}, false
	}
	return c.entries[best], true
}

// IsRecommendationRequest: 게임 추천을 요청하는 문구가 있는지 확인합니다.
func (c *Catalog) IsRecommendationRequest(text string) bool {
	if c.intents == nil {
		return false
	}
	return len(c.intents.MatchThreadSafe([]byte(strings.ToLower(text)))) > 0
}

// Recommend: 나이에 맞고 아직 하지 않은 게임을 limit 개까지 고릅니다.
// 조건에 맞는 게임이 없으면 카탈로그 앞쪽 limit 개를 그대로 반환합니다.
func (c *Catalog) Recommend(age int, played []string, limit int) []Entry {
	if limit <= 0 {
		return nil
	}

	playedSet := make(map[string]struct{}, len(played))
	for _, name := range played {
		value := normalizeKey(name)
		if value != "" {
			playedSet[value] = struct{}{}
		}
	}

	out := make([]Entry, 0, limit)
	for _, entry := range c.entries {
		if len(out) == limit {
			break
		}
		if !entry.FitsAge(age) || entry.playedIn(playedSet) {
			continue
		}
		out = append(out, entry)
	}
	if len(out) > 0 {
		return out
	}

	return slices.Clone(c.entries[:min(limit, len(c.entries))])
}

func (e Entry) playedIn(played map[string]struct{}) bool {
	if len(played) == 0 {
		return false
	}
	if _, ok := played[normalizeKey(e.CanonicalKey)]; ok {
		return true
	}
	_, ok := played[normalizeKey(e.DisplayName)]
	return ok
}

// normalizeKey 는 "Memory Galaxy", "memory_galaxy", "memory-galaxy" 를 같은 키로 만든다.
func normalizeKey(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.NewReplacer(" ", "-", "_", "-").Replace(value)
}

func newPhraseMatcher(phrases []string) *ahocorasick.Matcher {
	patterns := make([][]byte, 0, len(phrases))
	for _, phrase := range phrases {
		value := strings.ToLower(strings.TrimSpace(phrase))
		if value == "" {
			continue
		}
		patterns = append(patterns, []byte(value))
	}
	if len(patterns) == 0 {
		return nil
	}
	return ahocorasick.NewMatcher(patterns)
}
