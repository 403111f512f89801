package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// geminiClient implements the Client interface on top of the official genai SDK.
type geminiClient struct {
	cli         *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

// newGeminiClient creates a Gemini API client. An empty API key lets the SDK
// fall back to GOOGLE_API_KEY / GEMINI_API_KEY from the environment.
func newGeminiClient(ctx context.Context, cfg Config) (Client, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	cli, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}


	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}

	return &geminiClient{
		cli:         cli,
		model:       model,
		temperature: float32(cfg.temperature()),
		maxTokens:   int32(maxTokens),
	}, nil
}

// Analyze asks the model for a JSON response and returns the text of the first candidate.
func (g *geminiClient) Analyze(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{
			ResponseMIMEType:  "application/json",
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
			Temperature:       genai.Ptr(g.temperature),
			MaxOutputTokens:   g.maxTokens,
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}
