// Package testutil provides test doubles and database helpers shared by
// the spend-sage test suites.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/spend-sage/internal/model"
	"github.com/Veraticus/spend-sage/internal/storage"
)

// TestDB wraps a migrated in-memory store.
type TestDB struct {
	Storage *storage.SQLStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database.
// It automatically handles migrations and cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// SeedUser creates a user or fails the test.
func (db *TestDB) SeedUser(username string, goals []string, budget float64) *model.User {
	db.t.Helper()

	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Goals:    goals,
		Budget:   budget,
	}
	if err := db.Storage.CreateUser(context.Background(), user); err != nil {
		db.t.Fatalf("failed to seed user %q: %v", username, err)
	}
	return user
}

// EventSpec describes one purchase event to seed.
type EventSpec struct {
	Platform string
	Title    string
	Price    float64
}

// SeedEvents records events for user one minute apart, in the given order.
func (db *TestDB) SeedEvents(user *model.User, specs ...EventSpec) []model.ProductEvent {
	db.t.Helper()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	events := make([]model.ProductEvent, len(specs))
	for i, spec := range specs {
		events[i] = model.ProductEvent{
			UserID:       user.ID,
			SessionID:    "session-1",
			Platform:     spec.Platform,
			ProductURL:   "https://example.com/p/" + spec.Title,
			ProductTitle: spec.Title,
			Price:        spec.Price,
			Timestamp:    base.Add(time.Duration(i) * time.Minute),
		}
	}

	if _, err := db.Storage.SaveEvents(context.Background(), events); err != nil {
		db.t.Fatalf("failed to seed events: %v", err)
	}
	return events
}
