package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConfig struct {
	Env         string
	ContentFile string
	AI          AIConfig
	Telegram    TelegramConfig
	Server      ServerConfig
	Storage     StorageConfig
}

type TelegramConfig struct {
	Token          string
	BaseURL        string
	RateLimit      int
	SessionIdleTTL time.Duration
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// StorageConfig selects where the theme preference lives.
type StorageConfig struct {
	Backend         string
	PreferencesFile string
	RedisURL        string
}

const (
	StorageFile  = "file"
	StorageRedis = "redis"
)

// LoadAppConfig reads .env (if present) and the environment.
func LoadAppConfig() (*AppConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app_env", "development")
	v.SetDefault("content_file", "config/content.yaml")
	v.SetDefault("ai_provider", ProviderGemini)
	v.SetDefault("gemini_model", "gemini-2.5-flash")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("ai_max_tokens", 1024)
	v.SetDefault("ai_temperature", 0.7)
	v.SetDefault("ai_request_timeout", "60s")
	v.SetDefault("telegram_base_url", "https://api.telegram.org")
	v.SetDefault("rate_limit_per_minute", 10)
	v.SetDefault("session_idle_ttl", "24h")
	v.SetDefault("server_port", 8080)
	v.SetDefault("server_shutdown_timeout", "10s")
	v.SetDefault("preferences_backend", StorageFile)
	v.SetDefault("preferences_file", "data/preferences.json")

	cfg := &AppConfig{
		Env:         v.GetString("app_env"),
		ContentFile: v.GetString("content_file"),
		AI: AIConfig{
			Provider:       strings.ToLower(v.GetString("ai_provider")),
			GeminiKey:      v.GetString("gemini_api_key"),
			GeminiModel:    v.GetString("gemini_model"),
			OpenAIKey:      v.GetString("openai_api_key"),
			OpenAIModel:    v.GetString("openai_model"),
			MaxTokens:      v.GetInt("ai_max_tokens"),
			Temperature:    v.GetFloat64("ai_temperature"),
			RequestTimeout: v.GetDuration("ai_request_timeout"),
		},
		Telegram: TelegramConfig{
			Token:          v.GetString("telegram_bot_token"),
			BaseURL:        v.GetString("telegram_base_url"),
			RateLimit:      v.GetInt("rate_limit_per_minute"),
			SessionIdleTTL: v.GetDuration("session_idle_ttl"),
		},
		Server: ServerConfig{
			Port:            v.GetInt("server_port"),
			ShutdownTimeout: v.GetDuration("server_shutdown_timeout"),
		},
		Storage: StorageConfig{
			Backend:         strings.ToLower(v.GetString("preferences_backend")),
			PreferencesFile: v.GetString("preferences_file"),
			RedisURL:        v.GetString("redis_url"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c *AppConfig) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.Telegram.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if err := c.AI.ValidateConfig(); err != nil {
		return err
	}
	switch c.Storage.Backend {
	case StorageFile:
		if c.Storage.PreferencesFile == "" {
			return fmt.Errorf("PREFERENCES_FILE is required for the file backend")
		}
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown PREFERENCES_BACKEND %q", c.Storage.Backend)
	}
	return nil
}

// IsDevelopment reports whether logs should be human-readable.
func (c *AppConfig) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development"
}

// HTTPAddress returns the address the ops server listens on.
func (c *AppConfig) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
