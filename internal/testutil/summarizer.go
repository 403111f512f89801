package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/Veraticus/spend-sage/internal/model"
)

// ErrScriptedFailure is returned by FakeSummarizer for scripted failures.
var ErrScriptedFailure = errors.New("scripted failure")

const failForever = -1

// FakeSummarizer returns fixed artifacts and can be scripted to fail a step
// a number of times first. Steps are keyed by model.Step* names, and graph
// explanations by graph title.
type FakeSummarizer struct {
	Categories *model.CategoryDescriptions
	Brands     *model.BrandDescriptions
	Advice     *model.FinalAdvice

	failures        map[string]int
	calls           map[string]int
	synthesisInputs []model.SynthesisInput
	mu              sync.Mutex
}

// NewFakeSummarizer creates a FakeSummarizer with small default artifacts.
func NewFakeSummarizer() *FakeSummarizer {
	return &FakeSummarizer{
		Categories: &model.CategoryDescriptions{Categories: []model.ProductCategory{{
			CategoryName: "Electronics",
			Products:     []model.ProductDescription{{ProductName: "Wireless Mouse Logitech", Description: "Occasional accessory purchase."}},
		}}},
		Brands: &model.BrandDescriptions{Brands: []model.BrandAnalysis{{
			BrandName: "Logitech",
			Products:  []model.ProductDescription{{ProductName: "Wireless Mouse Logitech", Description: "Loyal to one peripheral brand."}},
		}}},
		Advice: &model.FinalAdvice{
			Summary:         "Spending is modest and focused on electronics.",
			Recommendations: []string{"Keep accessory spending under 5% of the budget."},
		},
		failures: make(map[string]int),
		calls:    make(map[string]int),
	}
}

// FailTimes makes the next n calls for step fail.
func (f *FakeSummarizer) FailTimes(step string, n int) *FakeSummarizer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[step] = n
	return f
}

// FailAlways makes every call for step fail.
func (f *FakeSummarizer) FailAlways(step string) *FakeSummarizer {
	return f.FailTimes(step, failForever)
}

// CallCount returns how many times step was attempted.
func (f *FakeSummarizer) CallCount(step string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[step]
}

// SynthesisInputs returns every input passed to Synthesize.
func (f *FakeSummarizer) SynthesisInputs() []model.SynthesisInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.SynthesisInput(nil), f.synthesisInputs...)
}

func (f *FakeSummarizer) attempt(ctx context.Context, step string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[step]++
	if err := ctx.Err(); err != nil {
		return err
	}

	switch remaining := f.failures[step]; {
	case remaining == failForever:
		return ErrScriptedFailure
	case remaining > 0:
		f.failures[step] = remaining - 1
		return ErrScriptedFailure
	}
	return nil
}

// DescribeCategories implements service.Summarizer.
func (f *FakeSummarizer) DescribeCategories(ctx context.Context, _ []model.PurchaseGroup, _ model.UserProfile) (*model.CategoryDescriptions, error) {
	if err := f.attempt(ctx, model.StepCategoryAnalysis); err != nil {
		return nil, err
	}
	return f.Categories, nil
}

// DescribeBrands implements service.Summarizer.
func (f *FakeSummarizer) DescribeBrands(ctx context.Context, _ []model.PurchaseGroup, _ model.UserProfile) (*model.BrandDescriptions, error) {
	if err := f.attempt(ctx, model.StepBrandAnalysis); err != nil {
		return nil, err
	}
	return f.Brands, nil
}

// ExplainGraph implements service.Summarizer.
func (f *FakeSummarizer) ExplainGraph(ctx context.Context, graph model.Graph, _ model.UserProfile) (*model.GraphExplanation, error) {
	if err := f.attempt(ctx, graph.Title); err != nil {
		return nil, err
	}
	return &model.GraphExplanation{GraphTitle: graph.Title, Explanation: "Explanation of " + graph.Title}, nil
}

// Synthesize implements service.Summarizer.
func (f *FakeSummarizer) Synthesize(ctx context.Context, input model.SynthesisInput, _ model.UserProfile) (*model.FinalAdvice, error) {
	f.mu.Lock()
	f.synthesisInputs = append(f.synthesisInputs, input)
	f.mu.Unlock()

	if err := f.attempt(ctx, model.StepFinalAdvice); err != nil {
		return nil, err
	}
	return f.Advice, nil
}
