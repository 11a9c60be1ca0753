// Package testdb provides a migrated Postgres pool for repository and
// service tests. TEST_DB_DSN selects an existing database; otherwise one
// container is started per test binary and shared by its tests.
package testdb

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"customer-accounts/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	sharedMu  sync.Mutex
	sharedDSN string
)

// Pool returns a pool on a freshly truncated, migrated database. The test is
// skipped when no DSN is configured and no container runtime is available.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn(t))
	require.NoError(t, err, "connect test db")
	t.Cleanup(pool.Close)

	require.NoError(t, pool.Ping(ctx), "ping test db")
	require.NoError(t, migrate.Apply(ctx, pool), "apply migrations")
	Reset(t, pool)
	return pool
}

// Reset removes every customer and address.
func Reset(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `TRUNCATE addresses, customers CASCADE`)
	require.NoError(t, err, "truncate tables")
}

func dsn(t *testing.T) string {
	t.Helper()
	if v := os.Getenv("TEST_DB_DSN"); v != "" {
		return v
	}
	if testing.Short() {
		t.Skip("skipping postgres test in short mode")
	}

	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedDSN != "" {
		return sharedDSN
	}

	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("accounts_test"),
		tcpostgres.WithUsername("accounts"),
		tcpostgres.WithPassword("accounts"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")

	sharedDSN, err = container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "container connection string")
	return sharedDSN
}
