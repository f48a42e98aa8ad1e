package repository_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/ecomall/internal/repository"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("ecomall"),
		postgres.WithUsername("ecomall"),
		postgres.WithPassword("ecomall"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, "", fmt.Errorf("container.ConnectionString: %w", err)
	}

	return container, connStr, nil
}

// newMigratedPool connects to the container and applies the schema.
func newMigratedPool(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	pool, err := repository.NewPool(ctx, connStr, 4)
	if err != nil {
		return nil, fmt.Errorf("repository.NewPool: %w", err)
	}

	if err := repository.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("repository.Migrate: %w", err)
	}

	// second run must be a no-op
	if err := repository.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("repository.Migrate again: %w", err)
	}

	return pool, nil
}
