// Package testutil provides PostgreSQL test containers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Tinuva88/TCGFun/internal/config"
	"github.com/Tinuva88/TCGFun/internal/storage/postgres"
)

// PostgresContainer wraps a migrated testcontainers PostgreSQL instance.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *postgres.Pool
	Config    config.DatabaseConfig
}

// NewPostgresContainer starts a PostgreSQL container, applies every
// migration and returns a connected pool. The container is terminated when
// the test finishes.
//
// Precondition: Docker must be available.
// Postcondition: Returns a running, migrated container or fails the test.
func NewPostgresContainer(t testing.TB) *PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in -short mode")
	}
	pc, err := startPostgres(context.Background(), t.Logf)
	if err != nil {
		t.Fatalf("%v", err)
	}
	t.Cleanup(pc.terminate)
	return pc
}

var (
	sharedOnce sync.Once
	shared     *PostgresContainer
	sharedErr  error
)

// NewPool returns a pool on a migrated PostgreSQL container shared by every
// test in the package. Tests must isolate their rows by unique ids.
//
// Precondition: Docker must be available.
func NewPool(t testing.TB) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in -short mode")
	}
	sharedOnce.Do(func() {
		shared, sharedErr = startPostgres(context.Background(), t.Logf)
	})
	if sharedErr != nil {
		t.Fatalf("%v", sharedErr)
	}
	return shared.Pool.DB()
}

func startPostgres(ctx context.Context, logf func(string, ...any)) (*PostgresContainer, error) {
	start := time.Now()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, wrapf("starting postgres container", err, start)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, wrapf("getting container host", err, start)
	}
	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, wrapf("getting mapped port", err, start)
	}

	dbCfg := config.DatabaseConfig{
		Host:            host,
		Port:            mappedPort.Int(),
		User:            "test",
		Password:        "test",
		Name:            "test",
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}
	if _, err := postgres.Migrate(dbCfg.DSN(), 0); err != nil {
		_ = container.Terminate(ctx)
		return nil, wrapf("applying migrations", err, start)
	}
	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, wrapf("connecting to test postgres", err, start)
	}
	logf("postgres container started and migrated [%s]", time.Since(start))

	return &PostgresContainer{container: container, Pool: pool, Config: dbCfg}, nil
}

func (pc *PostgresContainer) terminate() {
	pc.Pool.Close()
	_ = pc.container.Terminate(context.Background())
}

// DSN returns the connection string for the test database.
func (pc *PostgresContainer) DSN() string {
	return pc.Config.DSN()
}

func wrapf(step string, err error, start time.Time) error {
	return fmt.Errorf("%s: %w [%s]", step, err, time.Since(start))
}
