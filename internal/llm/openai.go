package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/spend-sage/internal/common"
)

const (
	openAIEndpoint = "https://api.openai.com/v1/chat/completions"
	groqEndpoint   = "https://api.groq.com/openai/v1/chat/completions"

	defaultOpenAIModel = "gpt-4o-mini"
	defaultGroqModel   = "llama3-8b-8192"
)

// openAIClient implements the Client interface for OpenAI's chat completions
// API and any endpoint speaking the same protocol.
type openAIClient struct {
	httpClient  *http.Client
	name        string
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	jsonMode    bool
}

// newOpenAIClient creates a new OpenAI API client.
func newOpenAIClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return newChatCompletionsClient("OpenAI", openAIEndpoint, defaultOpenAIModel, cfg), nil
}

// newGroqClient creates a client for Groq's OpenAI-compatible endpoint.
func newGroqClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Groq API key is required")
	}
	return newChatCompletionsClient("Groq", groqEndpoint, defaultGroqModel, cfg), nil
}

func newChatCompletionsClient(name, endpoint, defaultModel string, cfg Config) *openAIClient {
	if cfg.BaseURL != "" {
		endpoint = strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions"
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}


	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}

	return &openAIClient{
		name:        name,
		endpoint:    endpoint,
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: cfg.temperature(),
		maxTokens:   maxTokens,
		jsonMode:    true,
		httpClient: &http.Client{
			Timeout: cfg.httpTimeout(),
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Analyze sends a chat completion request and returns the first choice's content.
func (c *openAIClient) Analyze(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	requestBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	}
	if c.jsonMode {
		requestBody["response_format"] = map[string]string{"type": "json_object"}
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", c.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if err := statusError(c.name, resp.StatusCode, body); err != nil {
		return "", err
	}

	var response openAIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return response.Choices[0].Message.Content, nil
}

// statusError maps a non-200 provider response to an error. Throttling is
// reported as common.ErrRateLimit so retries back off to the maximum delay.
// Other client errors will not succeed on retry; server errors may.
func statusError(provider string, status int, body []byte) error {
	if status == http.StatusOK {
		return nil
	}
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("%s API error (status %d): %w", provider, status, common.ErrRateLimit)
	}
	return &common.RetryableError{
		Err:       fmt.Errorf("%s API error (status %d): %s", provider, status, string(body)),
		Retryable: status >= http.StatusInternalServerError,
	}
}

// openAIResponse represents the OpenAI API response structure.
type openAIResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Created int64 `json:"created"`
}
