package llm

import (
	"context"
	"time"
)

// Client defines the interface for LLM providers.
type Client interface {
	// Analyze sends a prompt with a system instruction and returns the raw response text.
	Analyze(ctx context.Context, prompt string, systemPrompt string) (string, error)
}

// Config holds configuration for the LLM providers and the components built on them.
type Config struct {
	Provider       string
	APIKey         string
	Model          string
	BaseURL        string
	ClaudeCodePath string
	MaxRetries     int
	RetryDelay     time.Duration
	CacheTTL       time.Duration
	CacheSize      int
	RateLimit      int
	Temperature    *float64 // nil selects DefaultTemperature
	MaxTokens      int
	Timeout        time.Duration
}

// DefaultTemperature is used when no temperature is configured.
const DefaultTemperature = 0.3

func (c Config) temperature() float64 {
	if c.Temperature != nil {
		return *c.Temperature
	}
	return DefaultTemperature
}

func (c Config) httpTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 60 * time.Second
}
