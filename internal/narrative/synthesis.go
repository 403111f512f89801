package narrative

import (
	"context"

	"github.com/Veraticus/spend-sage/internal/model"
)

// SynthesizeAdvice combines the narrative artifacts into a summary and
// recommendations. Absent analyses become empty structures and absent graph
// explanations are dropped. It returns nil on failure.
func (g *Generator) SynthesizeAdvice(
	ctx context.Context,
	categories *model.CategoryDescriptions,
	brands *model.BrandDescriptions,
	graphs []*model.GraphExplanation,
	profile model.UserProfile,
) *model.FinalAdvice {
	result, err := g.summarizer.Synthesize(ctx, SynthesisInput(categories, brands, graphs), profile)
	if err != nil {
		g.logger.Warn("final advice failed", "error", err)
		return nil
	}
	return result
}

// SynthesisInput builds the synthesis request, substituting empty
// structures for absent artifacts.
func SynthesisInput(categories *model.CategoryDescriptions, brands *model.BrandDescriptions, graphs []*model.GraphExplanation) model.SynthesisInput {
	if categories == nil {
		categories = &model.CategoryDescriptions{Categories: []model.ProductCategory{}}
	}
	if brands == nil {
		brands = &model.BrandDescriptions{Brands: []model.BrandAnalysis{}}
	}

	explanations := make([]model.GraphExplanation, 0, len(graphs))
	for _, g := range graphs {
		if g != nil {
			explanations = append(explanations, *g)
		}
	}

	return model.SynthesisInput{
		CategoryAnalysis:  categories,
		BrandAnalysis:     brands,
		GraphExplanations: explanations,
	}
}
