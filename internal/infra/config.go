package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv         string
	Port           string
	DatabaseURL    string
	StoragePath    string
	AllowedOrigins []string
	GeoIPDBPath    string

	GeminiBaseURL string

	// Declared model candidates per request class, priority in declaration
	// order. A batch's preferred model is moved to the front at dispatch time.
	TextModels  []string
	ImageModels []string
	VideoModels []string

	ModelCooldown  time.Duration
	RetryBaseDelay time.Duration
	PollInterval   time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		StoragePath:    getEnv("STORAGE_PATH", "./storage"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		GeoIPDBPath:    os.Getenv("GEOIP_DB_PATH"),

		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		TextModels:  getEnvList("TEXT_MODELS", []string{"gemini-2.5-flash", "gemini-2.0-flash"}),
		ImageModels: getEnvList("IMAGE_MODELS", []string{"gemini-2.5-flash-image", "imagen-4", "imagen-3"}),
		VideoModels: getEnvList("VIDEO_MODELS", []string{"veo-3", "veo-2"}),

		ModelCooldown:  time.Millisecond * time.Duration(getEnvInt("MODEL_COOLDOWN_MS", 60000)),
		RetryBaseDelay: time.Millisecond * time.Duration(getEnvInt("RETRY_BASE_DELAY_MS", 500)),
		PollInterval:   time.Second * time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 5)),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

// ModelsFor returns the declared candidates for a request class.
func (c *Config) ModelsFor(class string) []string {
	switch class {
	case "text":
		return c.TextModels
	case "image":
		return c.ImageModels
	case "video":
		return c.VideoModels
	default:
		return nil
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
