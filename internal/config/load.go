package config

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joho/godotenv"
)

var (
	configOnce  sync.Once
	configValue *Config
)

// Load 는 환경 변수 기반 설정을 로드한다.
func Load() *Config {
	configOnce.Do(func() {
		_ = godotenv.Load()
		configValue = buildConfig()
	})
	return configValue
}

// ProvideConfig 는 설정을 로드하고 검증한다.
func ProvideConfig() (*Config, error) {
	cfg := Load()
	if cfg == nil {
		return nil, errors.New("config not initialized")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 는 설정 유효성을 검사한다.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Provider.BaseURL == "" {
		return errors.New("provider base url is required")
	}
	if c.Provider.ChatModel == "" || c.Provider.SafetyModel == "" {
		return errors.New("chat and safety models are required")
	}
	if len(c.Provider.ImageCandidates) == 0 {
		return errors.New("at least one image model is required")
	}
	if c.Provider.RetryCount < 1 {
		return fmt.Errorf("retry count must be positive: %d", c.Provider.RetryCount)
	}
	if c.Provider.Temperature < 0 || c.Provider.Temperature > 2 {
		return fmt.Errorf("temperature out of range: %v", c.Provider.Temperature)
	}
	if c.Provider.TopP <= 0 || c.Provider.TopP > 1 {
		return fmt.Errorf("top_p out of range: %v", c.Provider.TopP)
	}
	if c.Voice.VoiceID == "" {
		return errors.New("voice id is required")
	}
	if c.Safety.UsesGemini() && len(c.Gemini.APIKeys) == 0 {
		return errors.New("gemini safety backend requires GOOGLE_API_KEY")
	}
	return nil
}

// LogEnvStatus 는 환경 설정 상태를 로그로 남긴다.
// 토큰은 호출 시점에 다시 읽으므로 여기서는 존재 여부만 기록한다.
func LogEnvStatus(cfg *Config, logger *slog.Logger) {
	if logger == nil || cfg == nil {
		return
	}

	chatToken := EnvToken(cfg.Provider.TokenEnv)()
	voiceToken := EnvToken(cfg.Voice.TokenEnv)()
	logger.Debug(
		"env_status",
		"env_file", fileExists(".env"),
		"provider_base_url", cfg.Provider.BaseURL,
		"chat_token", maskSecret(chatToken),
		"voice_token", maskSecret(voiceToken),
		"chat_model", cfg.Provider.ChatModel,
		"safety_model", cfg.Provider.SafetyModel,
		"safety_backend", cfg.Safety.Backend,
		"image_models", len(cfg.Provider.ImageCandidates),
		"image_cache", cfg.ImageCache.Enabled,
		"usage_db", cfg.Database.Enabled,
	)

	if chatToken == "" {
		logger.Warn("env_missing_chat_token", "env", cfg.Provider.TokenEnv)
	}
	if voiceToken == "" {
		logger.Warn("env_missing_voice_token", "env", cfg.Voice.TokenEnv)
	}
}

func buildConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			BaseURL:             getEnvString("TOGETHER_BASE_URL", "https://api.together.xyz"),
			TokenEnv:            getEnvString("PROVIDER_TOKEN_ENV", "TOGETHER_API_KEY"),
			ChatModel:           getEnvString("CHAT_MODEL", "meta-llama/Llama-3.3-70B-Instruct-Turbo"),
			SafetyModel:         getEnvString("SAFETY_MODEL", "meta-llama/Meta-Llama-Guard-3-8B"),
			MaxTokens:           max(1, getEnvInt("CHAT_MAX_TOKENS", 500)),
			SafetyMaxTokens:     max(1, getEnvInt("SAFETY_MAX_TOKENS", 10)),
			Temperature:         getEnvFloat("CHAT_TEMPERATURE", 0.7),
			TopP:                getEnvFloat("CHAT_TOP_P", 0.9),
			ImageCandidates:     parseImageCandidates(getEnvString("IMAGE_MODELS", "")),
			RetryCount:          max(1, getEnvInt("UPSTREAM_RETRIES", 3)),
			RetryBaseDelayMs:    getEnvNonNegativeInt("UPSTREAM_RETRY_BASE_DELAY_MS", 1000),
			TextTimeoutSeconds:  max(1, getEnvInt("UPSTREAM_TEXT_TIMEOUT", 30)),
			ImageTimeoutSeconds: max(1, getEnvInt("UPSTREAM_IMAGE_TIMEOUT", 60)),
		},
		Voice: VoiceConfig{
			BaseURL:         getEnvString("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io"),
			TokenEnv:        getEnvString("VOICE_TOKEN_ENV", "ELEVENLABS_API_KEY"),
			VoiceID:         getEnvString("ELEVENLABS_VOICE_ID", "21m00Tcm4TlvDq8ikWAM"),
			ModelID:         getEnvString("ELEVENLABS_MODEL_ID", "eleven_multilingual_v2"),
			Stability:       getEnvFloat("ELEVENLABS_STABILITY", 0.5),
			SimilarityBoost: getEnvFloat("ELEVENLABS_SIMILARITY_BOOST", 0.75),
		},
		Safety: SafetyConfig{
			Backend: getEnvString("SAFETY_BACKEND", "together"),
		},
		Gemini: GeminiConfig{
			APIKeys:        parseAPIKeys(),
			Model:          getEnvString("GEMINI_MODEL", "gemini-2.5-flash"),
			TimeoutSeconds: max(1, getEnvInt("GEMINI_TIMEOUT", 30)),
		},
		Learner: LearnerConfig{
			DefaultAge:          getEnvNonNegativeInt("LEARNER_DEFAULT_AGE", 0),
			RecommendationLimit: max(1, getEnvInt("RECOMMENDATION_LIMIT", 2)),
		},
		Guard: GuardConfig{
			Enabled:         getEnvBool("GUARD_ENABLED", true),
			RulepacksDir:    getEnvString("RULEPACKS_DIR", ""),
			CacheMaxSize:    getEnvInt("GUARD_CACHE_SIZE", 10000),
			CacheTTLSeconds: getEnvInt("GUARD_CACHE_TTL", 3600),
		},
		ImageCache: ImageCacheConfig{
			URL:          getEnvString("IMAGE_CACHE_URL", "redis://localhost:6379"),
			Enabled:      getEnvBool("IMAGE_CACHE_ENABLED", false),
			Required:     getEnvBool("IMAGE_CACHE_REQUIRED", false),
			DisableCache: getEnvBool("IMAGE_CACHE_DISABLE_CLIENT_CACHE", true),
			TTLMinutes:   max(1, getEnvInt("IMAGE_CACHE_TTL_MINUTES", 1440)),
		},
		Logging: LoggingConfig{
			Level:      getEnvString("LOG_LEVEL", "info"),
			LogDir:     getEnvString("LOG_DIR", ""),
			MaxSizeMB:  getEnvInt("LOG_FILE_MAX_SIZE_MB", 10),
			MaxBackups: getEnvInt("LOG_FILE_MAX_BACKUPS", 10),
			MaxAgeDays: getEnvInt("LOG_FILE_MAX_AGE_DAYS", 7),
			Compress:   getEnvBool("LOG_FILE_COMPRESS", true),
		},
		HTTP: HTTPConfig{
			Host:         getEnvString("HTTP_HOST", "0.0.0.0"),
			Port:         getEnvInt("HTTP_PORT", 8888),
			HTTP2Enabled: getEnvBool("HTTP2_ENABLED", true),
		},
		HTTPAuth: HTTPAuthConfig{
			APIKey: getEnvString("HTTP_API_KEY", ""),
		},
		HTTPRateLimit: HTTPRateLimitConfig{
			RequestsPerMinute: getEnvNonNegativeInt("HTTP_RATE_LIMIT_RPM", 0),
			CacheSize:         max(1, getEnvNonNegativeInt("HTTP_RATE_LIMIT_CACHE_SIZE", 10000)),
			CacheTTLSeconds:   max(1, getEnvNonNegativeInt("HTTP_RATE_LIMIT_CACHE_TTL_SECONDS", 120)),
		},
		Telemetry: readTelemetryConfig(),
		Database: DatabaseConfig{
			Enabled:                        getEnvBool("USAGE_DB_ENABLED", false),
			Host:                           getEnvString("DB_HOST", "localhost"),
			Port:                           getEnvInt("DB_PORT", 5432),
			Name:                           getEnvString("DB_NAME", "neuraplay"),
			User:                           getEnvString("DB_USER", "neuraplay"),
			Password:                       getEnvString("DB_PASSWORD", ""),
			MinPool:                        getEnvInt("DB_MIN_POOL", 1),
			MaxPool:                        getEnvInt("DB_MAX_POOL", 5),
			ConnMaxLifetimeMinutes:         getEnvNonNegativeInt("DB_CONN_MAX_LIFETIME_MINUTES", 60),
			ConnMaxIdleTimeMinutes:         getEnvNonNegativeInt("DB_CONN_MAX_IDLE_TIME_MINUTES", 10),
			UsageBatchEnabled:              getEnvBool("DB_USAGE_BATCH_ENABLED", false),
			UsageBatchFlushIntervalSeconds: max(1, getEnvNonNegativeInt("DB_USAGE_BATCH_FLUSH_INTERVAL_SECONDS", 1)),
			UsageBatchFlushTimeoutSeconds:  max(1, getEnvNonNegativeInt("DB_USAGE_BATCH_FLUSH_TIMEOUT_SECONDS", 5)),
			UsageBatchMaxPendingRequests:   max(1, getEnvNonNegativeInt("DB_USAGE_BATCH_MAX_PENDING_REQUESTS", 50)),
			UsageBatchMaxBackoffSeconds:    max(1, getEnvNonNegativeInt("DB_USAGE_BATCH_MAX_BACKOFF_SECONDS", 30)),
			UsageBatchErrorLogIntervalSecs: getEnvNonNegativeInt("DB_USAGE_BATCH_ERROR_LOG_INTERVAL_SECONDS", 60),
		},
	}
}
