package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderVenice = "venice"
	ProviderMock   = "mock"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	LLMProvider   string
	VeniceAPIKey  string
	VeniceBaseURL string
	ModelName     string
	LLMTimeout    time.Duration

	RedisURL        string
	SessionTTL      time.Duration
	WorldPromptFile string
	HistoryLimit    int
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables take precedence over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	llmTimeout, err := time.ParseDuration(getEnv("LLM_TIMEOUT", "120s"))
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TIMEOUT: %w", err)
	}
	historyLimit, err := strconv.Atoi(getEnv("HISTORY_LIMIT", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid HISTORY_LIMIT: %w", err)
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderVenice)),
		VeniceAPIKey:    getEnv("VENICE_API_KEY", ""),
		VeniceBaseURL:   getEnv("VENICE_BASE_URL", "https://api.venice.ai/api/v1"),
		ModelName:       getEnv("MODEL_NAME", "zai-org-glm-4.7"),
		LLMTimeout:      llmTimeout,
		RedisURL:        getEnv("REDIS_URL", ""),
		SessionTTL:      sessionTTL,
		WorldPromptFile: getEnv("WORLD_PROMPT_FILE", ""),
		HistoryLimit:    historyLimit,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderVenice:
		if c.VeniceAPIKey == "" {
			return errors.New("VENICE_API_KEY is required when LLM_PROVIDER is venice")
		}
	case ProviderMock:
	default:
		return fmt.Errorf("invalid LLM_PROVIDER %q: must be one of %s, %s", c.LLMProvider, ProviderVenice, ProviderMock)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid PORT %q", c.Port)
	}
	if c.SessionTTL < 0 {
		return errors.New("SESSION_TTL must not be negative")
	}
	if c.HistoryLimit < 1 {
		return errors.New("HISTORY_LIMIT must be at least 1")
	}
	return nil
}

// WorldPrompt returns the contents of WorldPromptFile, or "" when no file
// is configured.
func (c *Config) WorldPrompt() (string, error) {
	if c.WorldPromptFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.WorldPromptFile)
	if err != nil {
		return "", fmt.Errorf("failed to read world prompt: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
