package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spend-sage/internal/common"
	"github.com/Veraticus/spend-sage/internal/model"
	"github.com/Veraticus/spend-sage/internal/service"
)

// Classifier implements service.Classifier using an LLM client.
type Classifier struct {
	client    Client
	prompts   *promptBuilder
	cache     *classificationCache
	logger    *slog.Logger
	retryOpts service.RetryOptions
}

// NewClassifier creates a new LLM-based classifier. Transport failures are
// retried up to cfg.MaxRetries times; unparseable replies are not.
func NewClassifier(client Client, cfg Config, logger *slog.Logger) (*Classifier, error) {
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

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &Classifier{
		client:    client,
		prompts:   prompts,
		cache:     newClassificationCache(cfg.CacheSize, cfg.CacheTTL),
		logger:    logger,
		retryOpts: retryOpts,
	}, nil
}

// Classify asks the model for the brand and category of productName. Any
// reply that does not carry both labels as non-empty strings is returned as
// an error wrapping common.ErrClassificationFailed.
func (c *Classifier) Classify(ctx context.Context, productName string, brands, categories []string) (model.Classification, error) {
	key := classificationKey(productName, brands, categories)
	if cached, found := c.cache.get(key); found {
		c.logger.Debug("cache hit for product", "product", productName)
		return cached, nil
	}

	prompt, err := c.prompts.classify(productName, brands, categories)
	if err != nil {
		return model.Classification{}, err
	}

	var content string
	err = common.WithRetry(ctx, func() error {
		resp, analyzeErr := c.client.Analyze(ctx, prompt, systemPromptJSON)
		if analyzeErr != nil {
			return &common.RetryableError{Err: analyzeErr, Retryable: ctx.Err() == nil && transient(analyzeErr)}
		}
		content = resp
		return nil
	}, c.retryOpts)
	if err != nil {
		return model.Classification{}, fmt.Errorf("%w: %w", common.ErrClassificationFailed, err)
	}

	result, err := parseClassification(content, productName)
	if err != nil {
		c.logger.Debug("discarding classification", "product", productName, "error", err)
		return model.Classification{}, fmt.Errorf("%w: %w", common.ErrClassificationFailed, err)
	}

	c.cache.set(key, result)

	c.logger.Debug("product classified",
		"product", productName,
		"brand", result.Brand,
		"category", result.Category)

	return result, nil
}

// transient reports whether a client error is worth another attempt.
// Errors the provider already classified keep their verdict; anything
// else, such as a dropped connection, is retried.
func transient(err error) bool {
	if common.IsRetryable(err) {
		return true
	}
	var classified *common.RetryableError
	return !errors.As(err, &classified)
}

var _ service.Classifier = (*Classifier)(nil)
