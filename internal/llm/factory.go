package llm

import (
	"context"
	"fmt"
	"strings"
)

// Supported provider names.
const (
	ProviderOpenAI     = "openai"
	ProviderGroq       = "groq"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
	ProviderClaudeCode = "claudecode"
)

// Providers lists every provider name accepted by NewClient.
var Providers = []string{ProviderOpenAI, ProviderGroq, ProviderAnthropic, ProviderGemini, ProviderClaudeCode}

// NewClient creates a raw LLM client based on the provided configuration.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return newOpenAIClient(cfg)
	case ProviderGroq:
		return newGroqClient(cfg)
	case ProviderAnthropic:
		return newAnthropicClient(cfg)
	case ProviderGemini:
		return newGeminiClient(ctx, cfg)
	case ProviderClaudeCode:
		return newClaudeCodeClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
