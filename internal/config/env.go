package config

import (
	"os"
	"strconv"
	"strings"
)

// TokenSource 는 호출 시점에 공급자 토큰을 읽는 함수다.
type TokenSource func() string

// EnvToken 은 환경 변수에서 토큰을 매번 새로 읽는 TokenSource 를 반환한다.
func EnvToken(key string) TokenSource {
	return func() string {
		return strings.TrimSpace(os.Getenv(key))
	}
}

// StaticToken 은 고정 토큰을 반환하는 TokenSource 다.
func StaticToken(token string) TokenSource {
	return func() string {
		return token
	}
}

func parseAPIKeys() []string {
	keysValue := strings.TrimSpace(os.Getenv("GOOGLE_API_KEYS"))
	if keysValue != "" {
		return splitKeys(keysValue)
	}
	key := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	if key == "" {
		return nil
	}
	return []string{key}
}

func splitKeys(value string) []string {
	items := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

const fastSuffix = "@fast"

// defaultImageCandidates: 빠르고 저렴한 모델부터 시도합니다.
var defaultImageCandidates = []ImageCandidate{
	{ModelID: "black-forest-labs/FLUX.1-schnell-Free", Fast: true},
	{ModelID: "black-forest-labs/FLUX.1-schnell", Fast: true},
	{ModelID: "stabilityai/stable-diffusion-xl-base-1.0", Fast: false},
}

func parseImageCandidates(value string) []ImageCandidate {
	items := splitKeys(value)
	if len(items) == 0 {
		return append([]ImageCandidate(nil), defaultImageCandidates...)
	}
	result := make([]ImageCandidate, 0, len(items))
	for _, item := range items {
		fast := strings.HasSuffix(strings.ToLower(item), fastSuffix)
		modelID := item
		if fast {
			modelID = strings.TrimSpace(item[:len(item)-len(fastSuffix)])
		}
		if modelID == "" {
			continue
		}
		result = append(result, ImageCandidate{ModelID: modelID, Fast: fast})
	}
	return result
}

func getEnvString(key string, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func getEnvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getEnvNonNegativeInt(key string, def int) int {
	value := getEnvInt(key, def)
	if value < 0 {
		return 0
	}
	return value
}

func getEnvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getEnvBool(key string, def bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	value = strings.ToLower(value)
	return value == "true" || value == "1" || value == "yes" || value == "y"
}

func maskSecret(value string) string {
	if value == "" {
		return "<missing>"
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return value[:2] + "***" + value[len(value)-2:]
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// readTelemetryConfig: OpenTelemetry 설정을 환경 변수에서 읽습니다.
func readTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:        getEnvBool("OTEL_ENABLED", false),
		ServiceName:    getEnvString("OTEL_SERVICE_NAME", "neuraplay-ai-proxy"),
		ServiceVersion: getEnvString("OTEL_SERVICE_VERSION", "1.0.0"),
		Environment:    getEnvString("OTEL_ENVIRONMENT", "production"),
		OTLPEndpoint:   getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTLPInsecure:   getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		SampleRate:     getEnvFloat("OTEL_SAMPLE_RATE", 1.0),
	}
}
