package postgres

import (
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"sort"

	"github.com/kontorapp/kontor/internal/logger"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migration is one embedded SQL file
type Migration struct {
	Version string
	SQL     string
}

// Migrations returns the embedded migrations in apply order
func Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		body, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, err
		}
		migrations = append(migrations, Migration{Version: name, SQL: string(body)})
	}
	return migrations, nil
}

// Migrate applies every embedded migration not yet recorded in schema_migrations.
// With a non-nil dryRun writer the pending SQL is printed instead of executed.
func Migrate(ctx context.Context, db *DB, log *logger.Logger, dryRun io.Writer) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	var applied []string
	if err := db.SelectContext(ctx, &applied, `SELECT version FROM schema_migrations`); err != nil {
		return fmt.Errorf("reading schema_migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	migrations, err := Migrations()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if done[m.Version] {
			continue
		}

		if dryRun != nil {
			fmt.Fprintf(dryRun, "-- %s\n%s\n", m.Version, m.SQL)
			continue
		}

		log.Infow("applying migration", "version", m.Version)
		err := db.WithTx(ctx, func(ctx context.Context) error {
			if _, err := db.ExecContext(ctx, m.SQL); err != nil {
				return err
			}
			_, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version)
			return err
		})
		if err != nil {
			return fmt.Errorf("applying %s: %w", m.Version, err)
		}
	}

	return nil
}
