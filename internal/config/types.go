package config

import (
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ImageCandidate: 이미지 생성 모델 후보입니다. 목록 순서가 폴백 우선순위입니다.
type ImageCandidate struct {
	ModelID string
	Fast    bool
}

// ProviderConfig: 채팅/이미지 제공자(Together 호환 API) 설정입니다.
type ProviderConfig struct {
	BaseURL             string
	TokenEnv            string
	ChatModel           string
	SafetyModel         string
	MaxTokens           int
	SafetyMaxTokens     int
	Temperature         float64
	TopP                float64
	ImageCandidates     []ImageCandidate
	RetryCount          int
	RetryBaseDelayMs    int
	TextTimeoutSeconds  int
	ImageTimeoutSeconds int
}

// VoiceConfig: 음성 합성 제공자 설정입니다.
type VoiceConfig struct {
	BaseURL         string
	TokenEnv        string
	VoiceID         string
	ModelID         string
	Stability       float64
	SimilarityBoost float64
}

// SafetyConfig: 2차 안전 분류 백엔드 설정입니다.
type SafetyConfig struct {
	Backend string
}

// UsesGemini: 안전 분류에 Gemini 를 사용하는지 반환합니다.
func (s SafetyConfig) UsesGemini() bool {
	return strings.EqualFold(strings.TrimSpace(s.Backend), "gemini")
}

// GeminiConfig: Gemini 분류기 설정입니다.
type GeminiConfig struct {
	APIKeys        []string
	Model          string
	TimeoutSeconds int
}

// PrimaryKey: 기본 API 키를 반환합니다.
func (g GeminiConfig) PrimaryKey() string {
	if len(g.APIKeys) == 0 {
		return ""
	}
	return g.APIKeys[0]
}

// LearnerConfig: 추천 기본값 설정입니다.
type LearnerConfig struct {
	DefaultAge          int
	RecommendationLimit int
}

// GuardConfig: 금칙어 검사 설정입니다.
type GuardConfig struct {
	Enabled         bool
	RulepacksDir    string
	CacheMaxSize    int
	CacheTTLSeconds int
}

// ImageCacheConfig: 생성 이미지 캐시 저장소 설정입니다.
type ImageCacheConfig struct {
	URL          string
	Enabled      bool
	Required     bool
	DisableCache bool
	TTLMinutes   int
}

// LoggingConfig: 로깅 설정입니다.
type LoggingConfig struct {
	Level      string
	LogDir     string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// HTTPConfig: HTTP 서버 설정입니다.
type HTTPConfig struct {
	Host         string
	Port         int
	HTTP2Enabled bool
}

// HTTPAuthConfig: API 키 인증 설정입니다.
type HTTPAuthConfig struct {
	APIKey string
}

// HTTPRateLimitConfig: 요청 제한 설정입니다.
type HTTPRateLimitConfig struct {
	RequestsPerMinute int
	CacheSize         int
	CacheTTLSeconds   int
}

// TelemetryConfig: OpenTelemetry 설정입니다.
type TelemetryConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	OTLPInsecure   bool
	SampleRate     float64
}

// DatabaseConfig: 사용량 기록 DB 설정입니다.
type DatabaseConfig struct {
	Enabled                        bool
	Host                           string
	Port                           int
	Name                           string
	User                           string
	Password                       string
	MinPool                        int
	MaxPool                        int
	ConnMaxLifetimeMinutes         int
	ConnMaxIdleTimeMinutes         int
	UsageBatchEnabled              bool
	UsageBatchFlushIntervalSeconds int
	UsageBatchFlushTimeoutSeconds  int
	UsageBatchMaxPendingRequests   int
	UsageBatchMaxBackoffSeconds    int
	UsageBatchErrorLogIntervalSecs int
}

// DSN: DB 접속 문자열을 반환합니다.
func (d DatabaseConfig) DSN() string {
	host := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	u := &url.URL{
		Scheme: "postgresql",
		Host:   host,
		Path:   "/" + d.Name,
	}
	if d.Password == "" {
		u.User = url.User(d.User)
	} else {
		u.User = url.UserPassword(d.User, d.Password)
	}
	return u.String()
}

// Config: 애플리케이션 전체 설정입니다.
type Config struct {
	Provider      ProviderConfig
	Voice         VoiceConfig
	Safety        SafetyConfig
	Gemini        GeminiConfig
	Learner       LearnerConfig
	Guard         GuardConfig
	ImageCache    ImageCacheConfig
	Logging       LoggingConfig
	HTTP          HTTPConfig
	HTTPAuth      HTTPAuthConfig
	HTTPRateLimit HTTPRateLimitConfig
	Telemetry     TelemetryConfig
	Database      DatabaseConfig
}
