// ABOUTME: Tests for embedded schema migrations.
// ABOUTME: Covers versioning, idempotent re-runs and the single-active-session index.
package storage

import (
	"context"
	"path/filepath"
	"testing"
)

const latestSchemaVersion = 2

func TestMigrateReportsVersion(t *testing.T) {
	db := setupTestDB(t)

	v, dirty, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if v != latestSchemaVersion || dirty {
		t.Errorf("schema version = %d (dirty=%v), want %d", v, dirty, latestSchemaVersion)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	summary, err := db.Migrate()
	if err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if summary.Applied() {
		t.Errorf("second migrate applied changes: %+v", summary)
	}
	if summary.ToVersion != latestSchemaVersion {
		t.Errorf("to version = %d, want %d", summary.ToVersion, latestSchemaVersion)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gymbot.db")
	ctx := context.Background()

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	mustUser(t, db, 5)
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.GetUser(ctx, 5); err != nil {
		t.Errorf("user lost after reopen: %v", err)
	}
}

func TestSchemaHasSingleActiveIndex(t *testing.T) {
	db := setupTestDB(t)

	var name string
	err := db.db.GetContext(context.Background(), &name,
		`SELECT name FROM sqlite_master WHERE type = 'index' AND name = 'idx_sessions_one_active'`)
	if err != nil {
		t.Fatalf("index lookup failed: %v", err)
	}
	if name != "idx_sessions_one_active" {
		t.Errorf("unexpected index name %q", name)
	}
}
