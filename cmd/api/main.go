package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drytrack/drytrack-backend/api/routes"
	"github.com/drytrack/drytrack-backend/api/views"
	"github.com/drytrack/drytrack-backend/internal/analytics"
	"github.com/drytrack/drytrack-backend/internal/auth"
	"github.com/drytrack/drytrack-backend/internal/farmers"
	"github.com/drytrack/drytrack-backend/internal/localities"
	"github.com/drytrack/drytrack-backend/internal/records"
	"github.com/drytrack/drytrack-backend/internal/users"
	"github.com/drytrack/drytrack-backend/pkg/auth/session"
	"github.com/drytrack/drytrack-backend/pkg/config"
	"github.com/drytrack/drytrack-backend/pkg/db"
	"github.com/drytrack/drytrack-backend/pkg/logger"
	"github.com/drytrack/drytrack-backend/pkg/metrics"
	"github.com/drytrack/drytrack-backend/pkg/migrate"
	"github.com/drytrack/drytrack-backend/pkg/redis"
	"github.com/drytrack/drytrack-backend/pkg/security"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
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
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	conn := dbClient.DB()
	hasher := security.NewHasher(cfg.Password)
	userRepo := users.NewRepository(conn)
	localityRepo := localities.NewRepository(conn)

	authService, err := auth.NewService(auth.ServiceParams{
		Users:          userRepo,
		Farmers:        farmers.NewRepository(conn),
		Localities:     localityRepo,
		Hasher:         hasher,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	if err != nil {
		return err
	}
	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{DB: dbClient, Hasher: hasher})
	if err != nil {
		return err
	}
	recordsService, err := records.NewService(records.ServiceParams{
		DB:        dbClient,
		Logger:    logg,
		Metrics:   metrics.NewSyncMetrics(registry),
		MaxDrafts: cfg.Sync.MaxDrafts,
	})
	if err != nil {
		return err
	}
	analyticsService, err := analytics.NewService(analytics.ServiceParams{
		Records:    records.NewRepository(conn),
		Localities: localityRepo,
	})
	if err != nil {
		return err
	}
	farmersService, err := farmers.NewService(farmers.ServiceParams{DB: dbClient, Hasher: hasher, Localities: localityRepo})
	if err != nil {
		return err
	}
	renderer, err := views.New()
	if err != nil {
		return err
	}

	var google auth.IdentityProvider
	if provider := auth.NewGoogleProvider(cfg.Google); provider != nil {
		google = provider
	}

	handler := routes.NewRouter(routes.Params{
		Config:      cfg,
		Logger:      logg,
		Views:       renderer,
		DBPinger:    dbClient,
		RedisPinger: redisClient,
		RateLimits:  redisClient,
		Idempotency: redisClient,
		Sessions:    sessionManager,
		Metrics:     metrics.NewHTTPMetrics(registry),
		Gatherer:    registry,
		Auth:        authService,
		Register:    registerService,
		Google:      google,
		Records:     recordsService,
		Analytics:   analyticsService,
		Farmers:     farmersService,
		Users:       userRepo,
		Localities:  localityRepo,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"google": google != nil,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
