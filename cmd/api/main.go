package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/queue-dashboard/internal/api/http"
	"github.com/spec-kit/queue-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/queue-dashboard/internal/auth"
	"github.com/spec-kit/queue-dashboard/internal/config"
	"github.com/spec-kit/queue-dashboard/internal/events"
	"github.com/spec-kit/queue-dashboard/internal/observability"
	"github.com/spec-kit/queue-dashboard/internal/persistence"
	"github.com/spec-kit/queue-dashboard/internal/repository"
	"github.com/spec-kit/queue-dashboard/internal/service"
	"github.com/spec-kit/queue-dashboard/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.Enabled() {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	source := buildSource(cfg, pg, redis, logger)
	metrics := observability.NewMetrics()

	dispatcher := events.NewInMemoryDispatcher(logger)
	service.NewSnapshotNotifier(dispatcher, logger, metrics).RegisterHandlers()

	dashboard := service.NewDashboardService(cfg.View, service.DashboardDependencies{
		Source:     source,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	authService := service.NewAuthService(cfg.Auth)
	if cfg.Auth.Disabled {
		logger.Warn("AUTH_DISABLED is set; every request runs as operator")
	}

	refresher, err := worker.NewSnapshotRefresher(cfg.Source.RefreshCron, dashboard, cfg.App.RequestTimeout(), logger)
	if err != nil {
		logger.Fatal("failed to schedule snapshot refresh", zap.Error(err))
	}
	refresher.RunNow()
	refresher.Start()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, source, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(authService),
		Queues:         handlers.NewQueuesHandler(dashboard),
		Users:          handlers.NewUsersHandler(dashboard),
		Snapshot:       handlers.NewSnapshotHandler(dashboard),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), cfg.Auth.Disabled),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	refresher.Stop(shutdownCtx)
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

func buildSource(cfg *config.Config, pg *persistence.Postgres, redis *persistence.Redis, logger *zap.Logger) repository.QueueSource {
	var source repository.QueueSource
	switch cfg.Source.Kind {
	case config.SourceKindPostgres:
		source = repository.NewPostgresQueueSource(pg.PoolHandle())
		logger.Info("reading queue snapshots from postgres")
	default:
		source = repository.NewFileQueueSource(cfg.Source.FilePath)
		logger.Info("reading queue snapshots from file", zap.String("path", cfg.Source.FilePath))
	}

	if redis.Enabled() {
		return repository.NewCachedQueueSource(source, redis.Client, cfg.Redis.SnapshotKey, cfg.Redis.SnapshotTTL(), logger)
	}
	return source
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
