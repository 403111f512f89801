// Package advisor runs the full advice pipeline for one user: fetch,
// enrich, describe, explain, and synthesize.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/spend-sage/internal/aggregate"
	"github.com/Veraticus/spend-sage/internal/common"
	"github.com/Veraticus/spend-sage/internal/enrich"
	"github.com/Veraticus/spend-sage/internal/model"
	"github.com/Veraticus/spend-sage/internal/narrative"
	"github.com/Veraticus/spend-sage/internal/service"
)

// RetryPolicy controls how often a generation step is attempted.
// MaxAttempts of zero retries until success or cancellation.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryPolicy returns a bounded policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  5,
		InitialDelay: 2 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

func (p RetryPolicy) options() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  p.MaxAttempts,
		InitialDelay: p.InitialDelay,
		MaxDelay:     p.MaxDelay,
		Multiplier:   p.Multiplier,
		Unbounded:    p.MaxAttempts == 0,
	}
}

// Config holds the options for an advice run.
type Config struct {
	Progress         enrich.ProgressFunc
	SeedBrands       []string
	SeedCategories   []string
	Retry            RetryPolicy
	GraphConcurrency int
}

// Advisor wires the capabilities an advice run needs.
type Advisor struct {
	store      service.Store
	classifier service.Classifier
	generator  *narrative.Generator
	logger     *slog.Logger
	now        func() time.Time
	config     Config
}

// New creates an Advisor.
func New(store service.Store, classifier service.Classifier, summarizer service.Summarizer, config Config, logger *slog.Logger) *Advisor {
	if logger == nil {
		logger = slog.Default()
	}
	if config.GraphConcurrency <= 0 {
		config.GraphConcurrency = 1
	}
	return &Advisor{
		store:      store,
		classifier: classifier,
		generator:  narrative.New(summarizer, logger),
		logger:     logger,
		now:        time.Now,
		config:     config,
	}
}

// errAbsent marks an attempt that produced no artifact.
var errAbsent = errors.New("artifact not produced")

// GenerateFinancialAdvice runs the pipeline for username.
//
// A missing user or an interrupted enrichment returns a nil report. Steps
// that exhaust their attempts are recorded as failed and the run goes on.
// When final advice cannot be produced, the partial report is returned
// together with an error wrapping common.ErrGenerationFailed.
func (a *Advisor) GenerateFinancialAdvice(ctx context.Context, username string) (*model.Report, error) {
	runID := uuid.NewString()
	logger := a.logger.With("run_id", runID, "username", username)

	profile, purchases, err := FetchUserData(ctx, a.store, username)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded purchase history", "purchases", len(purchases))

	enricher := enrich.New(a.classifier, model.NewVocabulary(a.config.SeedBrands, a.config.SeedCategories), logger)
	enriched, err := enricher.EnrichAll(ctx, purchases, a.config.Progress)
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		RunID:       runID,
		Username:    username,
		GeneratedAt: a.now().UTC(),
		Profile:     profile,
		Purchases:   enriched,
	}

	var outcome model.StepOutcome
	report.CategoryAnalysis, outcome = runStep(ctx, a, model.StepCategoryAnalysis, func() *model.CategoryDescriptions {
		return a.generator.DescribeByCategory(ctx, enriched, profile)
	})
	report.Steps = append(report.Steps, outcome)

	report.BrandAnalysis, outcome = runStep(ctx, a, model.StepBrandAnalysis, func() *model.BrandDescriptions {
		return a.generator.DescribeByBrand(ctx, enriched, profile)
	})
	report.Steps = append(report.Steps, outcome)

	report.Graphs = a.explainGraphs(ctx, aggregate.Graphs(enriched), profile)
	for _, g := range report.Graphs {
		report.Steps = append(report.Steps, g.Outcome)
	}

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("advice run interrupted: %w", err)
	}

	explanations := make([]*model.GraphExplanation, len(report.Graphs))
	for i := range report.Graphs {
		explanations[i] = report.Graphs[i].Explanation
	}

	report.FinalAdvice, outcome = runStep(ctx, a, model.StepFinalAdvice, func() *model.FinalAdvice {
		return a.generator.SynthesizeAdvice(ctx, report.CategoryAnalysis, report.BrandAnalysis, explanations, profile)
	})
	report.Steps = append(report.Steps, outcome)

	logger.Info("advice run finished",
		"failed_steps", len(report.FailedSteps()),
		"has_final_advice", report.FinalAdvice != nil)

	if report.FinalAdvice == nil {
		return report, fmt.Errorf("%w: final advice: %s", common.ErrGenerationFailed, outcome.Error)
	}
	return report, nil
}

// explainGraphs explains every graph with at most GraphConcurrency requests
// in flight. Results keep graph order.
func (a *Advisor) explainGraphs(ctx context.Context, graphs []model.Graph, profile model.UserProfile) []model.GraphResult {
	results := make([]model.GraphResult, len(graphs))
	sem := make(chan struct{}, a.config.GraphConcurrency)
	var wg sync.WaitGroup

	for i, graph := range graphs {
		wg.Add(1)
		go func(i int, graph model.Graph) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			explanation, outcome := runStep(ctx, a, "graph:"+string(graph.Kind), func() *model.GraphExplanation {
				return a.generator.ExplainGraph(ctx, graph, profile)
			})
			results[i] = model.GraphResult{Graph: graph, Explanation: explanation, Outcome: outcome}
		}(i, graph)
	}

	wg.Wait()
	return results
}

// runStep attempts produce under the retry policy until it yields an artifact.
func runStep[T any](ctx context.Context, a *Advisor, step string, produce func() *T) (*T, model.StepOutcome) {
	outcome := model.StepOutcome{Step: step, Status: model.StepPending}

	var result *T
	err := common.WithRetry(ctx, func() error {
		outcome.Attempts++
		result = produce()
		if result == nil {
			return fmt.Errorf("%w: %s: %w", common.ErrGenerationFailed, step, errAbsent)
		}
		return nil
	}, a.config.Retry.options())

	if err != nil {
		outcome.Status = model.StepFailed
		outcome.Error = err.Error()
		a.logger.Error("generation step failed", "step", step, "attempts", outcome.Attempts, "error", err)
		return nil, outcome
	}

	outcome.Status = model.StepSuccess
	return result, outcome
}
