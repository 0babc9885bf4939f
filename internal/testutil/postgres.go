//go:build integration

package testutil

import (
	"context"
	"os"
	"testing"

	"leaddist-service/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SetupTestDB migrates the database named by TEST_DATABASE_URL and returns a
// pool on it with every table emptied. The test is skipped when the variable
// is unset. Tests sharing the database must not run in parallel.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	if _, err := db.MigrateUp(url); err != nil {
		t.Fatalf("migrate test DB: %v", err)
	}

	ctx := context.Background()
	pool, err := db.ConnectDB(ctx, db.PostgresConfig{URL: url, MaxConns: 8})
	if err != nil {
		t.Fatalf("connect to test DB: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, `TRUNCATE records, agents, admins RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate test DB: %v", err)
	}
	return pool
}
