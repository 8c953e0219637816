package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"

	"doc-analyzer/internal/shared/telemetry"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	defaultGeminiModel = "models/gemini-2.5-flash"
	defaultOpenAIModel = "gpt-4o-mini"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	DatabaseURL     string
	Env             string
	LogLevel        string
	JWTSecret       string

	LLMProvider    string
	LLMModel       string
	GeminiAPIKey   string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	GatewayTimeout time.Duration

	PromptMaxChars     int
	StoredTextMaxChars int
	MaxUploadBytes     int64
	HistoryLimit       int
	Extractors         []string
	ExtractWorkers     int
	UploadsPerMinute   float64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	provider := normalizeProvider(getEnv("LLM_PROVIDER", ProviderGemini))

	return Config{
		Port:               getEnv("PORT", "8080"),
		CORSAllowOrigin:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:        dbURL,
		Env:                env,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		LLMProvider:        provider,
		LLMModel:           ResolveModel(provider),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		GatewayTimeout:     getDuration("GATEWAY_TIMEOUT", 120*time.Second),
		PromptMaxChars:     getInt("PROMPT_MAX_CHARS", 100_000),
		StoredTextMaxChars: getInt("STORED_TEXT_MAX_CHARS", 1_000_000),
		MaxUploadBytes:     getSize("MAX_FILE_SIZE", 52428800),
		HistoryLimit:       getInt("HISTORY_LIMIT", 50),
		Extractors:         splitAndTrim(getEnv("EXTRACTORS", "structural,heuristic")),
		ExtractWorkers:     getInt("EXTRACT_WORKERS", 4),
		UploadsPerMinute:   getFloat("RATE_LIMIT_UPLOADS_PER_MIN", 10),
	}
}

// ResolveModel picks the model for provider: LLM_MODEL, then GEMINI_MODEL for
// the gemini provider, then DefaultModel.
func ResolveModel(provider string) string {
	if m := strings.TrimSpace(os.Getenv("LLM_MODEL")); m != "" {
		return m
	}
	if provider == ProviderGemini {
		if m := strings.TrimSpace(os.Getenv("GEMINI_MODEL")); m != "" {
			return m
		}
	}
	return DefaultModel(provider)
}

// DefaultModel returns the model used when no model variable is set.
func DefaultModel(provider string) string {
	if provider == ProviderOpenAI {
		return defaultOpenAIModel
	}
	return defaultGeminiModel
}

// APIKey returns the credential for the configured provider.
func (c Config) APIKey() string {
	if c.LLMProvider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// ExtractorEnabled reports whether the named strategy is listed in EXTRACTORS.
func (c Config) ExtractorEnabled(name string) bool {
	for _, e := range c.Extractors {
		if strings.EqualFold(e, name) {
			return true
		}
	}
	return false
}

// IsDevLike reports whether the environment allows dev conveniences such as guest identities.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val < 0 {
		telemetry.Warn("config.invalid_float", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if val, err := time.ParseDuration(raw); err == nil && val > 0 {
		return val
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	telemetry.Warn("config.invalid_duration", map[string]any{"key": key, "value": raw})
	return def
}

// getSize accepts plain byte counts as well as human sizes such as "50MB" or "10MiB".
func getSize(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := units.RAMInBytes(raw)
	if err != nil || val <= 0 {
		telemetry.Warn("config.invalid_size", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ProviderOpenAI:
		return ProviderOpenAI
	default:
		return ProviderGemini
	}
}
