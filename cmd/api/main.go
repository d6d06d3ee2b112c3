package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/jobtrackhq/jobtrack-service/internal/api/http"
	"github.com/jobtrackhq/jobtrack-service/internal/api/http/handlers"
	"github.com/jobtrackhq/jobtrack-service/internal/auth"
	"github.com/jobtrackhq/jobtrack-service/internal/config"
	"github.com/jobtrackhq/jobtrack-service/internal/events"
	"github.com/jobtrackhq/jobtrack-service/internal/observability"
	"github.com/jobtrackhq/jobtrack-service/internal/persistence"
	"github.com/jobtrackhq/jobtrack-service/internal/repository"
	"github.com/jobtrackhq/jobtrack-service/internal/service"
	"github.com/jobtrackhq/jobtrack-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	applicationRepo := repository.NewApplicationRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, userRepo)
	applicationService := service.NewApplicationService(service.ApplicationDependencies{
		ApplicationRepo: applicationRepo,
		Dispatcher:      dispatcher,
	})
	dashboardService := service.NewDashboardService(service.DashboardDependencies{
		ApplicationRepo: applicationRepo,
		Cache:           redis.Client,
		CacheTTL:        cfg.Cache.StatsTTL(),
		Logger:          logger,
	})
	dashboardService.RegisterInvalidationHandlers(dispatcher)

	reminderService := service.NewReminderService(dispatcher, logger)
	worker.StartReminderWorker(reminderService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	authHandler := handlers.NewAuthHandler(authService, cfg.Auth.SecureCookie)
	applicationsHandler := handlers.NewApplicationsHandler(applicationService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Auth:           authHandler,
		Applications:   applicationsHandler,
		Dashboard:      dashboardHandler,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
