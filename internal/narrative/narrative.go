// Package narrative turns enriched purchases and aggregate views into prose
// through a service.Summarizer. Every function here is best effort: a
// failure is logged and reported as a nil artifact.
package narrative

import (
	"context"
	"log/slog"

	"github.com/Veraticus/spend-sage/internal/aggregate"
	"github.com/Veraticus/spend-sage/internal/model"
	"github.com/Veraticus/spend-sage/internal/service"
)

// Generator produces narrative artifacts.
type Generator struct {
	summarizer service.Summarizer
	logger     *slog.Logger
}

// New creates a Generator.
func New(summarizer service.Summarizer, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{summarizer: summarizer, logger: logger}
}

// DescribeByCategory describes the customer's habits per product, grouped by category.
func (g *Generator) DescribeByCategory(ctx context.Context, purchases []model.Purchase, profile model.UserProfile) *model.CategoryDescriptions {
	result, err := g.summarizer.DescribeCategories(ctx, aggregate.GroupByCategory(purchases), profile)
	if err != nil {
		g.logger.Warn("category analysis failed", "error", err)
		return nil
	}
	return result
}

// DescribeByBrand describes the customer's habits per product, grouped by brand.
func (g *Generator) DescribeByBrand(ctx context.Context, purchases []model.Purchase, profile model.UserProfile) *model.BrandDescriptions {
	result, err := g.summarizer.DescribeBrands(ctx, aggregate.GroupByBrand(purchases), profile)
	if err != nil {
		g.logger.Warn("brand analysis failed", "error", err)
		return nil
	}
	return result
}

// ExplainGraph explains a single aggregate view.
func (g *Generator) ExplainGraph(ctx context.Context, graph model.Graph, profile model.UserProfile) *model.GraphExplanation {
	result, err := g.summarizer.ExplainGraph(ctx, graph, profile)
	if err != nil {
		g.logger.Warn("graph explanation failed", "graph", graph.Title, "error", err)
		return nil
	}
	return result
}
