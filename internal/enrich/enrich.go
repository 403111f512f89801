// Package enrich assigns a brand and category to every purchase, growing a
// shared vocabulary as it goes so later purchases reuse earlier labels.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spend-sage/internal/llm"
	"github.com/Veraticus/spend-sage/internal/model"
	"github.com/Veraticus/spend-sage/internal/service"
)

// ProgressFunc is called after each purchase is enriched.
type ProgressFunc func(done, total int)

// Enricher classifies purchases one at a time against a run-scoped vocabulary.
type Enricher struct {
	classifier service.Classifier
	vocab      *model.Vocabulary
	logger     *slog.Logger
}

// New creates an Enricher. A nil vocab starts empty.
func New(classifier service.Classifier, vocab *model.Vocabulary, logger *slog.Logger) *Enricher {
	if vocab == nil {
		vocab = model.NewVocabulary(nil, nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{classifier: classifier, vocab: vocab, logger: logger}
}

// Vocabulary returns the vocabulary as it stands after the calls made so far.
func (e *Enricher) Vocabulary() *model.Vocabulary {
	return e.vocab
}

// ClassifyProduct returns a copy of purchase with Brand and Category set.
// Classifier failures of any kind fall back to the Unknown and
// Miscellaneous sentinels. Both labels are canonicalized through the
// vocabulary, which grows by any label not seen before.
func (e *Enricher) ClassifyProduct(ctx context.Context, purchase model.Purchase) model.Purchase {
	if purchase.IsEnriched() {
		purchase.Brand = e.vocab.MergeBrand(purchase.Brand)
		purchase.Category = e.vocab.MergeCategory(purchase.Category)
		return purchase
	}

	brands, categories := e.vocab.Snapshot()
	brand, category := model.UnknownBrand, model.MiscellaneousCategory

	result, err := e.classifier.Classify(ctx, purchase.Name, brands, categories)
	if err != nil {
		e.logger.Warn("classification failed, using fallback labels",
			"product", purchase.Name,
			"reason", failureReason(err),
			"error", err)
	} else {
		brand, category = result.Brand, result.Category
	}

	purchase.Brand = e.vocab.MergeBrand(brand)
	purchase.Category = e.vocab.MergeCategory(category)

	// A label that was blank after trimming leaves the field unset.
	if purchase.Brand == "" {
		purchase.Brand = e.vocab.MergeBrand(model.UnknownBrand)
	}
	if purchase.Category == "" {
		purchase.Category = e.vocab.MergeCategory(model.MiscellaneousCategory)
	}

	return purchase
}

// EnrichAll classifies purchases in order. The input slice is not modified.
// It stops early only when ctx is done.
func (e *Enricher) EnrichAll(ctx context.Context, purchases []model.Purchase, progress ProgressFunc) ([]model.Purchase, error) {
	enriched := make([]model.Purchase, 0, len(purchases))

	for i, purchase := range purchases {
		if err := ctx.Err(); err != nil {
			return enriched, fmt.Errorf("enrichment interrupted after %d of %d purchases: %w", i, len(purchases), err)
		}

		enriched = append(enriched, e.ClassifyProduct(ctx, purchase))

		if progress != nil {
			progress(i+1, len(purchases))
		}
	}

	e.logger.Info("enrichment complete",
		"purchases", len(enriched),
		"brands", e.vocab.Brands.Len(),
		"categories", e.vocab.Categories.Len(),
		"vocabulary_version", e.vocab.Version)

	return enriched, nil
}

func failureReason(err error) string {
	switch {
	case llm.IsParseError(err):
		return "unusable reply"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "request failed"
	}
}
