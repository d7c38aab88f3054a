package guard

import (
	"fmt"
	"strings"
)

// Match: 매칭된 규칙 정보를 담습니다.
type Match struct {
	ID   string `json:"id"`
	Term string `json:"term"`
}

// Evaluation: 검사 결과를 담습니다.
type Evaluation struct {
	Hits []Match `json:"hits"`
}

// Blocked: 하나라도 매칭되면 차단 대상입니다.
func (e Evaluation) Blocked() bool {
	return len(e.Hits) > 0
}

// Terms: 매칭된 단어 목록을 반환합니다.
func (e Evaluation) Terms() []string {
	terms := make([]string, 0, len(e.Hits))
	for _, hit := range e.Hits {
		terms = append(terms, hit.Term)
	}
	return terms
}

// BlockedError: 차단된 입력 오류입니다.
type BlockedError struct {
	Terms []string
}

// Error: 오류 메시지를 반환합니다.
func (e *BlockedError) Error() string {
	return fmt.Sprintf("input blocked by content guard (terms=%s)", strings.Join(e.Terms, ","))
}
