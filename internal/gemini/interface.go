package gemini

import "context"

// Classifier 는 안전 분류기 인터페이스다.
// 테스트에서 mock 구현을 주입할 수 있도록 한다.
type Classifier interface {
	// Classify 분류 프롬프트 응답 본문 반환
	Classify(ctx context.Context, prompt string) (string, error)
}

// Client가 Classifier 인터페이스를 구현하는지 컴파일 타임 확인
var _ Classifier = (*Client)(nil)
