package test_utils

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/delat04/agda/internal/config"
	"github.com/delat04/agda/internal/database"
	log "github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// TestWithDB starts a disposable Postgres container, applies the repository
// migrations to it and snapshots the migrated state. It returns the container,
// a connect function, and an error when no container runtime is reachable, so
// callers can skip instead of aborting the whole run on machines without one.
//
// The caller owns the container and must Terminate it.
func TestWithDB() (*postgres.PostgresContainer, func() *sql.DB, error) {
	ctx := context.Background()

	container, err := postgres.Run(
		ctx, "postgres:18.1-alpine",
		postgres.WithDatabase("agda"),
		postgres.WithUsername("test_agda"),
		postgres.WithPassword("test_agda"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("starting postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, nil, fmt.Errorf("resolving container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, nil, fmt.Errorf("resolving mapped port: %w", err)
	}

	log.Infof("postgres container ready at %s:%d", host, port.Int())

	cfg := config.Database{
		Host:   host,
		Port:   port.Int(),
		User:   "test_agda",
		Pass:   "test_agda",
		Name:   "agda",
		Schema: "public",
	}

	if err := database.Migrate(cfg); err != nil {
		_ = container.Terminate(ctx)
		return nil, nil, fmt.Errorf("migrating container database: %w", err)
	}

	if err := container.Snapshot(ctx, postgres.WithSnapshotName("postgres-test-snapshot")); err != nil {
		_ = container.Terminate(ctx)
		return nil, nil, fmt.Errorf("snapshotting container database: %w", err)
	}

	return container, func() *sql.DB {
		db, err := database.Open(cfg)
		if err != nil {
			log.Fatalf("opening container database: %v", err)
		}
		return db
	}, nil
}
