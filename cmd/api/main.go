package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/shift-service/internal/api/http"
	"github.com/spec-kit/shift-service/internal/api/http/handlers"
	"github.com/spec-kit/shift-service/internal/auth"
	"github.com/spec-kit/shift-service/internal/config"
	"github.com/spec-kit/shift-service/internal/events"
	"github.com/spec-kit/shift-service/internal/observability"
	"github.com/spec-kit/shift-service/internal/persistence"
	"github.com/spec-kit/shift-service/internal/repository"
	"github.com/spec-kit/shift-service/internal/service"
	"github.com/spec-kit/shift-service/internal/worker"
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
	var (
		userRepo  repository.UserRepository
		shiftRepo repository.ShiftRepository
	)
	if pool != nil {
		userRepo = repository.NewUserRepository(pool)
		shiftRepo = repository.NewShiftRepository(pool)
	} else {
		logger.Warn("no database configured; using in-memory stores")
		userRepo = repository.NewMemoryUserRepository()
		shiftRepo = repository.NewMemoryShiftRepository(userRepo)
	}

	dispatcher := events.NewInMemoryDispatcher()
	revocations := auth.NewRedisRevocationStore(redis.Client)

	authService := service.NewAuthService(*cfg, userRepo, revocations)
	userService := service.NewUserService(userRepo, dispatcher, cfg.Auth.BcryptCost)
	shiftService := service.NewShiftService(shiftRepo, dispatcher)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.StartNotificationWorker(notificationService)

	if _, err := userService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Name, cfg.Admin.Password); err != nil {
		logger.Fatal("failed to seed admin user", zap.Error(err))
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, revocations)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Shifts:         handlers.NewShiftsHandler(shiftService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
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
