// Package migrations embeds the SQL schema and applies it with sql-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
)

//go:embed *.sql
var files embed.FS

const table = "schema_migrations"

// Source returns the embedded migration source.
func Source() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{FileSystem: files, Root: "."}
}

// Up applies all pending migrations and returns how many ran.
func Up(db *sql.DB) (int, error) {
	return run(db, migrate.Up, 0)
}

// Down rolls back at most steps migrations.
func Down(db *sql.DB, steps int) (int, error) {
	return run(db, migrate.Down, steps)
}

func run(db *sql.DB, dir migrate.MigrationDirection, max int) (int, error) {
	ms := migrate.MigrationSet{TableName: table}
	n, err := ms.ExecMax(db, "postgres", Source(), dir, max)
	if err != nil {
		return n, fmt.Errorf("apply migrations: %w", err)
	}
	return n, nil
}
