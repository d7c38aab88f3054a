package usage

import "time"

// ChatUsage 는 일자/모델별 채팅 토큰 사용량 집계를 저장하는 DB 모델이다.
type ChatUsage struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	UsageDate    time.Time `gorm:"column:usage_date;type:date"`
	Model        string    `gorm:"column:model"`
	InputTokens  int64     `gorm:"column:input_tokens"`
	OutputTokens int64     `gorm:"column:output_tokens"`
	RequestCount int64     `gorm:"column:request_count"`
	Version      int64     `gorm:"column:version"`
}

// TableName 은 GORM에서 사용할 테이블명을 반환한다.
func (ChatUsage) TableName() string {
	return "chat_token_usage"
}

// DailyUsage 는 API/집계용 사용량 뷰 모델이다. Model 이 비어 있으면 모든 모델의 합계다.
type DailyUsage struct {
	UsageDate    time.Time `json:"usage_date"`
	Model        string    `json:"model,omitempty"`
	InputTokens  int64     `json:"input_tokens"`
	OutputTokens int64     `json:"output_tokens"`
	RequestCount int64     `json:"request_count"`
}

// TotalTokens 는 입력+출력 토큰 합계를 반환한다.
func (d DailyUsage) TotalTokens() int64 {
	return d.InputTokens + d.OutputTokens
}

// usageKey 는 배치 집계 키다.
type usageKey struct {
	date  time.Time
	model string
}
