package store_test

import (
	"context"
	"os"
	"testing"

	"penney-bench/server/store"
	"penney-bench/server/store/storetest"
)

// Runs only against a disposable database: every subtest truncates the tables.
func TestPostgresConformance(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	storetest.Run(t, func(t *testing.T) store.ResultStore {
		ctx := context.Background()
		db, err := store.Open(dsn)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if err := store.Migrate(ctx, db); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		if _, err := db.Exec(ctx, `TRUNCATE batches RESTART IDENTITY CASCADE`); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return db
	})
}
