package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spend-sage/internal/common"
	"github.com/Veraticus/spend-sage/internal/model"
	"github.com/Veraticus/spend-sage/internal/service"
)

// Summarizer implements service.Summarizer. Each call makes exactly one
// model request; retry policy belongs to the caller.
type Summarizer struct {
	client  Client
	prompts *promptBuilder
	logger  *slog.Logger
}

// NewSummarizer creates a Summarizer on top of client.
func NewSummarizer(client Client, logger *slog.Logger) (*Summarizer, error) {
	if client == nil {
		return nil, fmt.Errorf("LLM client is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	prompts, err := newPromptBuilder()
	if err != nil {
		return nil, err
	}

	return &Summarizer{client: client, prompts: prompts, logger: logger}, nil
}

// DescribeCategories describes the customer's habits per product, grouped by category.
func (s *Summarizer) DescribeCategories(ctx context.Context, groups []model.PurchaseGroup, profile model.UserProfile) (*model.CategoryDescriptions, error) {
	prompt, err := s.prompts.groups("category", categorySchema, groups, profile)
	if err != nil {
		return nil, err
	}
	content, err := s.analyze(ctx, "category analysis", prompt)
	if err != nil {
		return nil, err
	}
	result, err := parseCategoryDescriptions(content)
	if err != nil {
		return nil, fmt.Errorf("%w: category analysis: %w", common.ErrGenerationFailed, err)
	}
	return result, nil
}

// DescribeBrands describes the customer's habits per product, grouped by brand.
func (s *Summarizer) DescribeBrands(ctx context.Context, groups []model.PurchaseGroup, profile model.UserProfile) (*model.BrandDescriptions, error) {
	prompt, err := s.prompts.groups("brand", brandSchema, groups, profile)
	if err != nil {
		return nil, err
	}
	content, err := s.analyze(ctx, "brand analysis", prompt)
	if err != nil {
		return nil, err
	}
	result, err := parseBrandDescriptions(content)
	if err != nil {
		return nil, fmt.Errorf("%w: brand analysis: %w", common.ErrGenerationFailed, err)
	}
	return result, nil
}

// ExplainGraph explains one aggregate view.
func (s *Summarizer) ExplainGraph(ctx context.Context, graph model.Graph, profile model.UserProfile) (*model.GraphExplanation, error) {
	prompt, err := s.prompts.graph(graph, profile)
	if err != nil {
		return nil, err
	}
	content, err := s.analyze(ctx, graph.Title, prompt)
	if err != nil {
		return nil, err
	}
	result, err := parseGraphExplanation(content, graph.Title)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrGenerationFailed, graph.Title, err)
	}
	return result, nil
}

// Synthesize produces the final summary and recommendations.
func (s *Summarizer) Synthesize(ctx context.Context, input model.SynthesisInput, profile model.UserProfile) (*model.FinalAdvice, error) {
	prompt, err := s.prompts.synthesis(input, profile)
	if err != nil {
		return nil, err
	}
	content, err := s.analyze(ctx, "final advice", prompt)
	if err != nil {
		return nil, err
	}
	result, err := parseFinalAdvice(content)
	if err != nil {
		return nil, fmt.Errorf("%w: final advice: %w", common.ErrGenerationFailed, err)
	}
	return result, nil
}

func (s *Summarizer) analyze(ctx context.Context, what, prompt string) (string, error) {
	s.logger.Debug("requesting generation", "artifact", what, "prompt_bytes", len(prompt))
	content, err := s.client.Analyze(ctx, prompt, systemPromptJSON)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", common.ErrGenerationFailed, what, err)
	}
	return content, nil
}

var _ service.Summarizer = (*Summarizer)(nil)
