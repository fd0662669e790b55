// Package testutils provides shared testing utilities across the application.
package testutils

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/ncecere/firecrawl-webui/internal/database"
	"github.com/ncecere/firecrawl-webui/internal/logger"
)

// OpenTestDB opens a migrated throwaway SQLite database under the test's
// temporary directory. The connection is closed when the test finishes.
func OpenTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("failed to close test database: %v", closeErr)
		}
	})

	if err := database.Migrate(db, logger.NewNoOp()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}
