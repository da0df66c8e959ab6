package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config selects and configures the LLM provider.
type Config struct {
	// Provider is one of "gemini", "anthropic", "openai", "openrouter",
	// "mock".
	Provider string

	Gemini     GeminiConfig
	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

// GeminiConfig holds Gemini settings.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// AnthropicConfig holds Anthropic settings.
type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIConfig holds OpenAI settings. BaseURL targets compatible APIs.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenRouterConfig holds OpenRouter settings.
type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures RetryProvider. MaxAttempts of 1 disables retry.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns defaults. Provider errors are surfaced to the
// caller straight away, so retry is off unless configured.
func DefaultConfig() Config {
	return Config{
		Provider:   "gemini",
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-mini"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-001"},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv reads QUIZCRAFT_* variables over the defaults. When no
// provider is selected explicitly the standard vendor key variables are
// probed with DiscoverConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	explicit := os.Getenv("QUIZCRAFT_LLM_PROVIDER")
	if explicit == "" {
		if found, ok := DiscoverConfig(); ok {
			cfg = found
		}
	} else {
		cfg.Provider = explicit
	}

	setString(&cfg.Gemini.APIKey, "QUIZCRAFT_GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "QUIZCRAFT_GEMINI_MODEL")
	setString(&cfg.Gemini.BaseURL, "QUIZCRAFT_GEMINI_BASE_URL")

	setString(&cfg.Anthropic.APIKey, "QUIZCRAFT_ANTHROPIC_API_KEY")
	setString(&cfg.Anthropic.Model, "QUIZCRAFT_ANTHROPIC_MODEL")
	setString(&cfg.Anthropic.BaseURL, "QUIZCRAFT_ANTHROPIC_BASE_URL")

	setString(&cfg.OpenAI.APIKey, "QUIZCRAFT_OPENAI_API_KEY")
	setString(&cfg.OpenAI.Model, "QUIZCRAFT_OPENAI_MODEL")
	setString(&cfg.OpenAI.BaseURL, "QUIZCRAFT_OPENAI_BASE_URL")

	setString(&cfg.OpenRouter.APIKey, "QUIZCRAFT_OPENROUTER_API_KEY")
	setString(&cfg.OpenRouter.Model, "QUIZCRAFT_OPENROUTER_MODEL")

	if v := os.Getenv("QUIZCRAFT_LLM_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Retry.MaxAttempts = n + 1
		}
	}
	if v := os.Getenv("QUIZCRAFT_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}

	return cfg
}

// DiscoverConfig probes the vendor key variables in order Gemini, OpenAI,
// Anthropic, OpenRouter and returns a config for the first one set.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	switch {
	case os.Getenv("GEMINI_API_KEY") != "":
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	case os.Getenv("OPENAI_API_KEY") != "":
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	case os.Getenv("ANTHROPIC_API_KEY") != "":
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case os.Getenv("OPENROUTER_API_KEY") != "":
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = os.Getenv("OPENROUTER_API_KEY")
	default:
		return Config{}, false
	}
	return cfg, true
}

// Validate checks that the selected provider has an API key.
func (c Config) Validate() error {
	var key, envVar string
	switch c.Provider {
	case "gemini":
		key, envVar = c.Gemini.APIKey, "GEMINI_API_KEY"
	case "anthropic":
		key, envVar = c.Anthropic.APIKey, "ANTHROPIC_API_KEY"
	case "openai":
		key, envVar = c.OpenAI.APIKey, "OPENAI_API_KEY"
	case "openrouter":
		key, envVar = c.OpenRouter.APIKey, "OPENROUTER_API_KEY"
	case "mock":
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s (or QUIZCRAFT_%s) is required for the %s provider", envVar, envVar, c.Provider)
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}
