package config

import (
	"fmt"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type AIConfig struct {
	Provider       string
	GeminiKey      string
	GeminiModel    string
	OpenAIKey      string
	OpenAIModel    string
	MaxTokens      int
	Temperature    float64
	RequestTimeout time.Duration
}

// HasCredential reports whether the selected provider has an API key.
// A missing key disables AI features; it is not a configuration error.
func (c AIConfig) HasCredential() bool {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIKey != ""
	case ProviderGemini:
		return c.GeminiKey != ""
	default:
		return false
	}
}

// ValidateConfig checks provider settings. It does not require a key.
func (c AIConfig) ValidateConfig() error {
	if c.Provider != ProviderGemini && c.Provider != ProviderOpenAI {
		return fmt.Errorf("AI_PROVIDER must be %q or %q", ProviderGemini, ProviderOpenAI)
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("AI_MAX_TOKENS must be positive")
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("AI_TEMPERATURE must be between 0 and 2")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("AI_REQUEST_TIMEOUT must be positive")
	}

	return nil
}

// GetModelInfo returns the settings worth logging at startup.
func (c AIConfig) GetModelInfo() map[string]interface{} {
	model := c.GeminiModel
	if c.Provider == ProviderOpenAI {
		model = c.OpenAIModel
	}
	return map[string]interface{}{
		"provider":    c.Provider,
		"model":       model,
		"max_tokens":  c.MaxTokens,
		"temperature": c.Temperature,
		"enabled":     c.HasCredential(),
	}
}
