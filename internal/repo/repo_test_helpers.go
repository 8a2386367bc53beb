package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/talx-hub/gopher-auth/internal/model"
	"github.com/talx-hub/gopher-auth/internal/service/dbmanager"
	"github.com/talx-hub/gopher-auth/internal/utils/pgcontainer"
)

const testDefaultTimeout = 5 * time.Second

// testPool is nil when no postgres container could be started.
var testPool *pgxpool.Pool

func runMain(m *testing.M, log *slog.Logger) (int, error) {
	pg := pgcontainer.New(log)
	defer pg.Close()

	err := pg.RunContainer()
	if errors.Is(err, pgcontainer.ErrDockerUnavailable) {
		log.WarnContext(context.TODO(), "users table tests will be skipped",
			slog.Any(model.KeyLoggerError, err))
		return m.Run(), nil
	}
	if err != nil {
		return 1, fmt.Errorf("failed to start postgres container: %w", err)
	}

	manager, err := migratedManager(pg.GetDSN(), log)
	if err != nil {
		return 1, err
	}
	defer manager.Close()

	testPool, err = manager.GetPool(context.Background())
	if err != nil {
		return 1, fmt.Errorf("failed to get test pool: %w", err)
	}
	return m.Run(), nil
}

// migratedManager connects through the same path the service uses, so the
// embedded migrations are exercised before any repository test runs.
func migratedManager(dsn string, log *slog.Logger) (*dbmanager.DBManager, error) {
	ctx, cancel := context.WithTimeout(context.Background(), testDefaultTimeout)
	defer cancel()

	manager := dbmanager.New(dsn, log, dbmanager.WithMaxConns(4)).
		Connect(ctx).
		ApplyMigrations(ctx).
		Ping(ctx)
	if err := manager.Error(); err != nil {
		manager.Close()
		return nil, fmt.Errorf("failed to prepare users schema: %w", err)
	}
	return manager, nil
}

func resetUsers(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), testDefaultTimeout)
	defer cancel()
	_, err := pool.Exec(ctx, `TRUNCATE users RESTART IDENTITY`)
	require.NoError(t, err)
}

// loadFixtureFile runs the whole file in one round trip. Exec without
// arguments uses the simple protocol, which accepts several statements.
func loadFixtureFile(pool *pgxpool.Pool, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read fixture %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), testDefaultTimeout)
	defer cancel()
	if _, err = pool.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to apply fixture %s: %w", path, err)
	}
	return nil
}

// setupRepo hands every test an empty users table.
func setupRepo[T any](t *testing.T,
	repoConstructor func(pool connectionPool, log *slog.Logger) T,
) (T, context.Context, context.CancelFunc, *pgxpool.Pool) {
	t.Helper()
	if testPool == nil {
		t.Skip("postgres container is not available")
	}

	resetUsers(t, testPool)
	ctx, cancel := context.WithTimeout(context.Background(), testDefaultTimeout)
	return repoConstructor(testPool, slog.Default()), ctx, cancel, testPool
}

func strPtr(s string) *string {
	return &s
}
