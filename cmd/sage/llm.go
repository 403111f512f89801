package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/spend-sage/internal/common"
	"github.com/Veraticus/spend-sage/internal/llm"
)

// apiKeyEnv names the environment variable consulted when the config file has
// no key for a provider.
var apiKeyEnv = map[string]string{
	llm.ProviderOpenAI:    "OPENAI_API_KEY",
	llm.ProviderGroq:      "GROQ_API_KEY",
	llm.ProviderAnthropic: "ANTHROPIC_API_KEY",
	llm.ProviderGemini:    "GEMINI_API_KEY",
}

// llmConfig builds the LLM configuration from viper settings.
func llmConfig() (llm.Config, error) {
	provider := strings.ToLower(viper.GetString("llm.provider"))
	if provider == "" {
		provider = llm.ProviderOpenAI // default provider
	}

	cfg := llm.Config{
		Provider:       provider,
		Model:          viper.GetString("llm.model"),
		BaseURL:        viper.GetString("llm.base_url"),
		ClaudeCodePath: viper.GetString("llm.claude_code_path"),
		MaxTokens:      viper.GetInt("llm.max_tokens"),
		MaxRetries:     viper.GetInt("llm.max_retries"),
		RetryDelay:     viper.GetDuration("llm.retry_delay"),
		CacheTTL:       viper.GetDuration("llm.cache_ttl"),
		CacheSize:      viper.GetInt("llm.cache_size"),
		RateLimit:      viper.GetInt("llm.rate_limit"),
		Timeout:        viper.GetDuration("llm.timeout"),
	}

	if viper.IsSet("llm.temperature") {
		t := viper.GetFloat64("llm.temperature")
		cfg.Temperature = &t
	}

	if provider == llm.ProviderClaudeCode {
		return cfg, nil
	}

	envName, ok := apiKeyEnv[provider]
	if !ok {
		return llm.Config{}, fmt.Errorf("%w: unknown LLM provider %q (supported: %s)",
			common.ErrInvalidConfig, provider, strings.Join(llm.Providers, ", "))
	}

	// Check viper first, then environment variable
	cfg.APIKey = viper.GetString("llm." + provider + "_api_key")
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(envName)
	}
	if cfg.APIKey == "" {
		return llm.Config{}, common.NewUserError(
			fmt.Sprintf("%s API key not found; set llm.%s_api_key or %s", provider, provider, envName),
			common.ErrMissingConfig)
	}

	return cfg, nil
}

// llmComponents holds the model-backed capabilities of an advice run. The
// classifier and summarizer share one rate-limited client.
type llmComponents struct {
	classifier *llm.Classifier
	summarizer *llm.Summarizer
	stop       func()
}

func newLLMComponents(ctx context.Context, logger *slog.Logger) (*llmComponents, error) {
	cfg, err := llmConfig()
	if err != nil {
		return nil, err
	}

	client, err := llm.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	limited, stop := llm.WithRateLimit(client, cfg.RateLimit)

	classifier, err := llm.NewClassifier(limited, cfg, logger)
	if err != nil {
		stop()
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}
	summarizer, err := llm.NewSummarizer(limited, logger)
	if err != nil {
		stop()
		return nil, fmt.Errorf("failed to create summarizer: %w", err)
	}

	logger.Info("LLM ready", "provider", cfg.Provider, "model", cfg.Model, "rate_limit", cfg.RateLimit)
	return &llmComponents{classifier: classifier, summarizer: summarizer, stop: stop}, nil
}
