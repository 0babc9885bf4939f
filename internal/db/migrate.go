// internal/db/migrate.go
package db

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationTable = "schema_migrations"

func migrationSource() *migrate.EmbedFileSystemMigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}
}

// Migrate applies (up) or rolls back (down) schema migrations and returns how many ran.
// max limits the number of steps; 0 means all.
func Migrate(databaseURL string, direction migrate.MigrationDirection, max int) (int, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return 0, fmt.Errorf("failed to open database: %w", err)
	}
	defer conn.Close()

	migrate.SetTable(migrationTable)
	n, err := migrate.ExecMax(conn, "postgres", migrationSource(), direction, max)
	if err != nil {
		return n, fmt.Errorf("failed to run migrations: %w", err)
	}
	return n, nil
}

// MigrateUp applies every pending migration.
func MigrateUp(databaseURL string) (int, error) {
	return Migrate(databaseURL, migrate.Up, 0)
}
