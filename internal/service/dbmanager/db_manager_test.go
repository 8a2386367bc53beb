package dbmanager_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talx-hub/gopher-auth/internal/model"
	"github.com/talx-hub/gopher-auth/internal/service/dbmanager"
	"github.com/talx-hub/gopher-auth/internal/utils/pgcontainer"
)

const testDefaultTimeout = 5 * time.Second

var (
	getDSN func() string
)

func requireDSN(t *testing.T) string {
	t.Helper()
	if getDSN == nil {
		t.Skip("docker is unavailable")
	}
	return getDSN()
}

func TestMain(m *testing.M) {
	log := slog.Default()
	code, err := runMain(m, log)
	if err != nil {
		log.ErrorContext(context.TODO(),
			"unexpected test failure",
			slog.Any(model.KeyLoggerError, err),
		)
	}
	os.Exit(code)
}

func runMain(m *testing.M, log *slog.Logger) (int, error) {
	pg := pgcontainer.New(log)
	err := pg.RunContainer()
	defer pg.Close()
	if errors.Is(err, pgcontainer.ErrDockerUnavailable) {
		log.WarnContext(context.TODO(), "DB tests will be skipped",
			slog.Any(model.KeyLoggerError, err))
		return m.Run(), nil
	}
	if err != nil {
		return 1, fmt.Errorf("failed to run docker container: %w", err)
	}
	getDSN = func() string {
		return pg.GetDSN()
	}

	exitCode := m.Run()
	return exitCode, nil
}

func TestDBManager_Connect(t *testing.T) {
	dsn := requireDSN(t)
	db := dbmanager.New(dsn, slog.Default())
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), testDefaultTimeout)
	defer cancel()

	db.Connect(ctx)
	if err := db.Error(); err != nil {
		t.Errorf("failed to connect to test DB using dsn %s: %v", dsn, err)
	}
}

func TestDBManager_Connect_badDSN(t *testing.T) {
	db := dbmanager.New("not a dsn at all ://", slog.Default())
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), testDefaultTimeout)
	defer cancel()

	db.Connect(ctx).Ping(ctx).ApplyMigrations(ctx)
	assert.Error(t, db.Error())
}

func TestDBManager_Connect_badCACert(t *testing.T) {
	caFile := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(caFile, []byte("not a certificate"), 0o600))

	db := dbmanager.New(requireDSN(t), slog.Default(), dbmanager.WithCACert(caFile))
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), testDefaultTimeout)
	defer cancel()

	db.Connect(ctx)
	assert.Error(t, db.Error())
}

func TestDBManager_Ping(t *testing.T) {
	dsn := requireDSN(t)
	db := dbmanager.New(dsn, slog.Default(), dbmanager.WithMaxConns(2))
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), testDefaultTimeout)
	defer cancel()

	db.Connect(ctx).Ping(ctx)
	if err := db.Error(); err != nil {
		t.Errorf("failed to ping test DB using dsn %s: %v", dsn, err)
	}
}

func TestDBManager_ApplyMigrations(t *testing.T) {
	dsn := requireDSN(t)
	db := dbmanager.New(dsn, slog.Default())
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), testDefaultTimeout)
	defer cancel()

	db.Connect(ctx).Ping(ctx).ApplyMigrations(ctx).ApplyMigrations(ctx)
	if err := db.Error(); err != nil {
		t.Errorf("failed to apply mirgrations to test db using dsn %s: %v", dsn, err)
	}

	pool, err := db.GetPool(ctx)
	require.NoError(t, err)
	var exists bool
	err = pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'users')`,
	).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDBManager_GetPool_from_nil(t *testing.T) {
	dsn := requireDSN(t)
	db := dbmanager.New(dsn, slog.Default())
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), testDefaultTimeout)
	defer cancel()
	p, err := db.GetPool(ctx)
	assert.Nil(t, p)
	assert.Error(t, err)
}

func TestDBManager_GetPool(t *testing.T) {
	dsn := requireDSN(t)
	db := dbmanager.New(dsn, slog.Default())
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), testDefaultTimeout)
	defer cancel()

	db.Connect(ctx)
	if err := db.Error(); err != nil {
		t.Errorf("failed to connect to test DB using dsn %s: %v", dsn, err)
	}
	p, err := db.GetPool(ctx)
	require.NoError(t, err)
	assert.NotNil(t, p)
}
