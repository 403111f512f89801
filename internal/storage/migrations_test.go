package storage

import (
	"context"
	"testing"
)

func TestMigrate_ReachesExpectedVersion(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != ExpectedSchemaVersion {
		t.Errorf("version = %d, want %d", version, ExpectedSchemaVersion)
	}

	last := migrations[len(migrations)-1]
	if last.Version != ExpectedSchemaVersion {
		t.Errorf("last migration %d does not match ExpectedSchemaVersion %d", last.Version, ExpectedSchemaVersion)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
}

func TestMigrate_Indexes(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	tests := []struct {
		name   string
		exists bool
	}{
		{name: "idx_product_events_user_time", exists: true},
		{name: "idx_product_events_platform", exists: true},
		{name: "idx_product_events_user", exists: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var count int
			err := store.db.QueryRow(`
				SELECT COUNT(*) FROM sqlite_master
				WHERE type='index' AND name=?
			`, tt.name).Scan(&count)
			if err != nil {
				t.Fatalf("Failed to check index: %v", err)
			}
			if (count == 1) != tt.exists {
				t.Errorf("index %s exists = %v, want %v", tt.name, count == 1, tt.exists)
			}
		})
	}
}

func TestMigrations_VersionsAreSequential(t *testing.T) {
	for i, m := range migrations {
		if m.Version != i+1 {
			t.Errorf("migration at index %d has version %d", i, m.Version)
		}
		if len(m.Statements) == 0 {
			t.Errorf("migration %d has no statements", m.Version)
		}
	}
}
