package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/gigly/gigly-backend/api/routes"
	"github.com/gigly/gigly-backend/internal/favorites"
	"github.com/gigly/gigly-backend/internal/gigs"
	"github.com/gigly/gigly-backend/internal/users"
	stripewebhook "github.com/gigly/gigly-backend/internal/webhooks/stripe"
	"github.com/gigly/gigly-backend/pkg/auth"
	"github.com/gigly/gigly-backend/pkg/config"
	"github.com/gigly/gigly-backend/pkg/db"
	"github.com/gigly/gigly-backend/pkg/logger"
	"github.com/gigly/gigly-backend/pkg/metrics"
	"github.com/gigly/gigly-backend/pkg/migrate"
	"github.com/gigly/gigly-backend/pkg/redis"
	"github.com/gigly/gigly-backend/pkg/storage"
	"github.com/gigly/gigly-backend/pkg/stripe"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(runCtx, cfg, logg)
	stop()
	if err != nil {
		logg.Error(context.Background(), "api exited with error", err)
		os.Exit(1)
	}
}

// run owns every resource it opens; they are closed before it returns.
func run(runCtx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(runCtx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(runCtx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(runCtx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	resolver, err := storage.New(runCtx, cfg.Storage, logg)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	stripeClient, err := stripe.NewClient(runCtx, cfg.Stripe, logg)
	if err != nil {
		return fmt.Errorf("stripe: %w", err)
	}

	verifier, err := auth.NewVerifier(runCtx, cfg.Identity)
	if err != nil {
		return fmt.Errorf("identity verifier: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	readModelMetrics := metrics.NewReadModelMetrics(registry)

	gigsRepo := gigs.NewRepository(dbClient.DB())
	usersRepo := users.NewRepository(dbClient.DB())

	favoritesService, err := favorites.NewService(favorites.ServiceParams{
		Repo:      favorites.NewRepository(dbClient.DB()),
		Directory: gigsRepo,
	})
	if err != nil {
		return fmt.Errorf("favorites service: %w", err)
	}

	gigsService, err := gigs.NewService(gigs.ServiceParams{
		Repo:      gigsRepo,
		Favorites: favoritesService,
		Resolver:  resolver,
		Config:    cfg.Gigs,
		Metrics:   readModelMetrics,
		Logger:    logg,
	})
	if err != nil {
		return fmt.Errorf("gigs service: %w", err)
	}

	usersService, err := users.NewService(users.ServiceParams{
		Repo:     usersRepo,
		Accounts: stripeClient,
		App:      cfg.App,
		Logger:   logg,
	})
	if err != nil {
		return fmt.Errorf("users service: %w", err)
	}

	stripeWebhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Accounts: usersRepo,
		Logger:   logg,
	})
	if err != nil {
		return fmt.Errorf("stripe webhook service: %w", err)
	}

	stripeWebhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Eventing.IdempotencyTTL, "")
	if err != nil {
		return fmt.Errorf("stripe webhook guard: %w", err)
	}

	addr := ":" + cfg.App.Port
	ctx := logg.WithFields(runCtx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			httpMetrics,
			verifier,
			gigsService,
			usersService,
			favoritesService,
			stripeClient,
			stripeWebhookService,
			stripeWebhookGuard,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, server, logg)
}

// serve runs server until ctx ends, then drains it within shutdownTimeout.
func serve(ctx context.Context, server *http.Server, logg *logger.Logger) error {
	logg.Info(ctx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("api server stopped unexpectedly: %w", err)
		}
		return nil
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logg.Info(ctx, "api server stopped")
	return nil
}
