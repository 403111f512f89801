// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spend-sage/internal/model"
)

// Store is the read side of persistence used by an advice run.
type Store interface {
	// LookupUser returns common.ErrUserNotFound when no user has the given username.
	LookupUser(ctx context.Context, username string) (*model.User, error)
	LookupEvents(ctx context.Context, userID string) ([]model.ProductEvent, error)
}

// EventFilter defines filtering options for event queries.
type EventFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	Store

	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	ListUsers(ctx context.Context) ([]model.User, error)

	// Event operations
	SaveEvents(ctx context.Context, events []model.ProductEvent) (int, error)
	ListEvents(ctx context.Context, userID string, filter EventFilter) ([]model.ProductEvent, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// Classifier assigns a brand and category to a free-text product name.
// Known labels bias the classifier toward reuse.
type Classifier interface {
	Classify(ctx context.Context, productName string, brands, categories []string) (model.Classification, error)
}

// Summarizer produces the narrative artifacts of an advice run.
type Summarizer interface {
	DescribeCategories(ctx context.Context, groups []model.PurchaseGroup, profile model.UserProfile) (*model.CategoryDescriptions, error)
	DescribeBrands(ctx context.Context, groups []model.PurchaseGroup, profile model.UserProfile) (*model.BrandDescriptions, error)
	ExplainGraph(ctx context.Context, graph model.Graph, profile model.UserProfile) (*model.GraphExplanation, error)
	Synthesize(ctx context.Context, input model.SynthesisInput, profile model.UserProfile) (*model.FinalAdvice, error)
}

// ReportWriter sends a finished report to an output channel.
type ReportWriter interface {
	Write(ctx context.Context, report *model.Report) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// Unbounded retries until success or context cancellation; MaxAttempts is ignored.
	Unbounded bool
}
