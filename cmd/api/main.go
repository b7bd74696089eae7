package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/tarot-service/internal/api/http"
	"github.com/spec-kit/tarot-service/internal/api/http/handlers"
	"github.com/spec-kit/tarot-service/internal/auth"
	"github.com/spec-kit/tarot-service/internal/config"
	"github.com/spec-kit/tarot-service/internal/events"
	"github.com/spec-kit/tarot-service/internal/observability"
	"github.com/spec-kit/tarot-service/internal/persistence"
	"github.com/spec-kit/tarot-service/internal/ratelimit"
	"github.com/spec-kit/tarot-service/internal/repository"
	"github.com/spec-kit/tarot-service/internal/service"
	"github.com/spec-kit/tarot-service/internal/tarot"
	"github.com/spec-kit/tarot-service/internal/worker"
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
	bookingRepo := repository.NewBookingRepository(pool)
	readingRepo := repository.NewReadingRepository(pool)
	upgradeRepo := repository.NewUpgradeRepository(pool)

	dispatcher := events.NewAsyncDispatcher(logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:    userRepo,
		UpgradeRepo: upgradeRepo,
	})
	bookingService := service.NewBookingService(service.BookingDependencies{
		BookingRepo: bookingRepo,
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
	})
	readingService := service.NewReadingService(readingRepo, tarot.NewTemplateInterpreter())

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	limiter := ratelimit.NewLimiter(redis.Client, logger)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Bookings:       handlers.NewBookingsHandler(bookingService),
		Readings:       handlers.NewReadingsHandler(readingService),
		Admin:          handlers.NewAdminHandler(userRepo),
		AuthMiddleware: authMiddleware,
		Limiter:        limiter,
		RateLimits:     cfg.RateLimit,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
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
