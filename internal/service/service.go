package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/talx-hub/gopher-auth/internal/api/handlers"
	"github.com/talx-hub/gopher-auth/internal/model"
	"github.com/talx-hub/gopher-auth/internal/repo"
	"github.com/talx-hub/gopher-auth/internal/router"
	"github.com/talx-hub/gopher-auth/internal/service/config"
	"github.com/talx-hub/gopher-auth/internal/service/dbmanager"
	"github.com/talx-hub/gopher-auth/internal/utils/logger"
	"github.com/talx-hub/gopher-auth/internal/utils/password"
)

const (
	connectTimeout    = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
)

type app struct {
	log       *slog.Logger
	dbManager *dbmanager.DBManager
	server    *http.Server
}

func initService(ctx context.Context, log *slog.Logger) (*app, error) {
	cfg := config.NewBuilder(log).
		FromDotEnv().
		FromEnv().
		FromFlags().
		GetConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log = logger.New(logger.ParseLevel(cfg.LogLevel))
	slog.SetDefault(log)

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	dbManager := dbmanager.New(cfg.DatabaseURI, log,
		dbmanager.WithCACert(cfg.DatabaseCACert),
		dbmanager.WithMaxConns(cfg.DatabaseMaxConns)).
		Connect(connectCtx).
		ApplyMigrations(connectCtx).
		Ping(connectCtx)
	if err := dbManager.Error(); err != nil {
		dbManager.Close()
		return nil, fmt.Errorf("db connection error: %w", err)
	}

	pool, err := dbManager.GetPool(connectCtx)
	if err != nil {
		dbManager.Close()
		return nil, fmt.Errorf("failed to get DB pool: %w", err)
	}

	usersRepo := repo.NewUserRepository(pool, log)

	hashConcurrency := cfg.HashConcurrency
	if hashConcurrency == 0 {
		hashConcurrency = uint64(runtime.NumCPU())
	}
	hasher := password.New(hashConcurrency)

	rr := router.New(cfg, log)
	rr.SetRouter(&struct {
		*handlers.AuthHandler
		*handlers.ProfileHandler
		*handlers.UserHandler
		*handlers.HealthHandler
	}{
		AuthHandler: handlers.NewAuthHandler(usersRepo, hasher, log, handlers.AuthOptions{
			Secret:             cfg.SecretKey,
			TokenTTL:           cfg.TokenTTL,
			PasswordMinEntropy: cfg.PasswordMinEntropy,
		}),
		ProfileHandler: handlers.NewProfileHandler(usersRepo, log),
		UserHandler:    handlers.NewUserHandler(usersRepo, log),
		HealthHandler:  handlers.NewHealthHandler(usersRepo, log),
	})

	return &app{
		log:       log,
		dbManager: dbManager,
		server: &http.Server{
			Addr:              cfg.RunAddr,
			Handler:           rr.GetRouter(),
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}, nil
}

func (a *app) run(ctx context.Context) error {
	defer a.dbManager.Close()

	errCh := make(chan error, 1)
	go func() {
		a.log.LogAttrs(ctx,
			slog.LevelInfo,
			"server started",
			slog.String("address", a.server.Addr),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen and serve error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.LogAttrs(context.Background(), slog.LevelInfo, "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), model.DefaultShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

func RunServer() {
	log := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	a, err := initService(ctx, log)
	if err != nil {
		log.LogAttrs(context.TODO(),
			slog.LevelError,
			"failed to init service",
			slog.Any(model.KeyLoggerError, err),
		)
		stop()
		os.Exit(1) //nolint:gocritic // stop is already called
	}

	if err = a.run(ctx); err != nil {
		a.log.LogAttrs(context.TODO(),
			slog.LevelError,
			"server stopped with error",
			slog.Any(model.KeyLoggerError, err),
		)
		stop()
		os.Exit(1) //nolint:gocritic // stop is already called
	}
	a.log.LogAttrs(context.TODO(), slog.LevelInfo, "server stopped")
}
