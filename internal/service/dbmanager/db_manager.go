package dbmanager

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/talx-hub/gopher-auth/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const defaultMaxConns = 10

type DBManager struct {
	log      *slog.Logger
	pool     *pgxpool.Pool
	err      error
	dsn      string
	caFile   string
	maxConns int32
}

type Option func(*DBManager)

// WithCACert makes the pool require TLS and verify the server certificate
// against the PEM bundle in file.
func WithCACert(file string) Option {
	return func(m *DBManager) {
		m.caFile = file
	}
}

func WithMaxConns(n int32) Option {
	return func(m *DBManager) {
		if n > 0 {
			m.maxConns = n
		}
	}
}

func New(dsn string, log *slog.Logger, opts ...Option) *DBManager {
	m := &DBManager{
		log:      log,
		pool:     nil,
		err:      nil,
		dsn:      dsn,
		maxConns: defaultMaxConns,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *DBManager) Connect(ctx context.Context) *DBManager {
	if m.err != nil {
		return m
	}

	cfg, err := pgxpool.ParseConfig(m.dsn)
	if err != nil {
		m.err = fmt.Errorf("failed to parse DSN: %w", err)
		return m
	}
	cfg.MinConns = 1
	cfg.MaxConns = m.maxConns
	cfg.ConnConfig.Tracer = &queryTracer{m.log}

	if m.caFile != "" {
		tlsCfg, err := loadTLSConfig(m.caFile, cfg.ConnConfig.Host)
		if err != nil {
			m.err = err
			return m
		}
		cfg.ConnConfig.TLSConfig = tlsCfg
		cfg.ConnConfig.Fallbacks = nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		m.err = fmt.Errorf("failed to init pgxpool: %w", err)
		return m
	}

	m.pool = pool
	return m
}

func loadTLSConfig(caFile, host string) (*tls.Config, error) {
	pem, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}
	roots := x509.NewCertPool()
	if !roots.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", caFile)
	}
	return &tls.Config{
		RootCAs:    roots,
		ServerName: host,
		MinVersion: tls.VersionTLS12,
	}, nil
}

func (m *DBManager) Ping(ctx context.Context) *DBManager {
	if m.err != nil {
		return m
	}
	if m.pool == nil {
		m.err = errors.New("failed to ping the DB: not connected")
		return m
	}
	if err := m.pool.Ping(ctx); err != nil {
		m.err = fmt.Errorf("failed to ping the DB: %w", err)
	}
	return m
}

func (m *DBManager) ApplyMigrations(ctx context.Context) *DBManager {
	if m.err != nil {
		return m
	}
	if m.pool == nil {
		m.err = errors.New("failed to apply migrations: not connected")
		return m
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		m.err = fmt.Errorf("failed to open migrations source: %w", err)
		return m
	}

	db := stdlib.OpenDBFromPool(m.pool)
	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		_ = db.Close()
		m.err = fmt.Errorf("failed to init migrations driver: %w", err)
		return m
	}

	migrator, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		_ = db.Close()
		m.err = fmt.Errorf("failed to init migrator: %w", err)
		return m
	}
	defer func() {
		srcErr, dbErr := migrator.Close()
		if closeErr := errors.Join(srcErr, dbErr); closeErr != nil {
			m.log.LogAttrs(ctx,
				slog.LevelWarn,
				"failed to close migrator",
				slog.Any(model.KeyLoggerError, closeErr),
			)
		}
	}()

	if err = migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		m.err = fmt.Errorf("failed to apply migrations: %w", err)
		return m
	}

	m.log.LogAttrs(ctx, slog.LevelInfo, "migrations applied")
	return m
}

func (m *DBManager) Error() error {
	return m.err
}

func (m *DBManager) GetPool(_ context.Context) (*pgxpool.Pool, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.pool == nil {
		return nil, errors.New("DB pool is not initialized")
	}
	return m.pool, nil
}

// Close drains the pool: it waits for acquired connections to be released.
func (m *DBManager) Close() {
	if m.pool == nil {
		return
	}

	m.pool.Close()
	m.pool = nil
	m.log.LogAttrs(context.TODO(),
		slog.LevelInfo,
		"connection to DB closed",
	)
}
