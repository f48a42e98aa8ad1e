package repository

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema files in name order. Every statement is
// idempotent, running it on an up-to-date database is a no-op.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("fs.Glob: %w", err)
	}
	sort.Strings(files)

	for _, name := range files {
		stmt, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("migrations.ReadFile[%s]: %w", name, err)
		}

		if _, err := pool.Exec(ctx, string(stmt)); err != nil {
			return fmt.Errorf("pool.Exec[%s]: %w", name, err)
		}
	}

	return nil
}
