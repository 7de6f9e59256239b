package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/issue-workflow/internal/api/http"
	"github.com/spec-kit/issue-workflow/internal/api/http/handlers"
	"github.com/spec-kit/issue-workflow/internal/auth"
	"github.com/spec-kit/issue-workflow/internal/config"
	"github.com/spec-kit/issue-workflow/internal/events"
	"github.com/spec-kit/issue-workflow/internal/observability"
	"github.com/spec-kit/issue-workflow/internal/persistence"
	"github.com/spec-kit/issue-workflow/internal/repository"
	"github.com/spec-kit/issue-workflow/internal/service"
	"github.com/spec-kit/issue-workflow/internal/worker"
	"github.com/spec-kit/issue-workflow/internal/workflow"
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

	rds, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rds.Close() //nolint:errcheck

	pool := pg.PoolHandle()
	runner := repository.NewRunner(pool)
	store := runner.Store()

	dispatcher := events.NewInMemoryDispatcher(logger)
	engine := workflow.NewEngine(runner, dispatcher, logger)

	authService := service.NewAuthService(cfg.Auth, store.Users)
	ticketService := service.NewTicketService(store, dispatcher)
	lifecycleService := service.NewLifecycleService(engine, store)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	redisSink := events.NewRedisSink(rds.Client, cfg.Redis.EventChannel)
	worker.StartNotificationWorker(notificationService, dispatcher, redisSink)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), store.Users)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, rds, cfg.App.Version),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Lifecycle:      handlers.NewLifecycleHandler(lifecycleService),
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
