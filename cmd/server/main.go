package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/depositcore/internal/adapter/http"
	"github.com/iho/depositcore/internal/adapter/http/handler"
	"github.com/iho/depositcore/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/depositcore/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/depositcore/internal/adapter/repository/redis"
	"github.com/iho/depositcore/internal/infrastructure/config"
	"github.com/iho/depositcore/internal/infrastructure/eventpublisher"
	"github.com/iho/depositcore/internal/infrastructure/logger"
	"github.com/iho/depositcore/internal/infrastructure/metrics"
	"github.com/iho/depositcore/internal/infrastructure/postgres"
	"github.com/iho/depositcore/internal/infrastructure/redis"
	"github.com/iho/depositcore/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx := context.Background()

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	appMetrics := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	postingRepo := postgresRepo.NewPostingRepository(pool)
	productCache := redisRepo.NewCache(redisClient)
	productRepo := postgresRepo.NewProductRepository(pool, productCache, cfg.ProductCacheTTL, appLogger)
	scheduleRepo := postgresRepo.NewScheduleRepository(pool)
	calendarRepo := postgresRepo.NewCalendarRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, productRepo, postingRepo, scheduleRepo, calendarRepo, outboxRepo, idGen)
	postingUC := usecase.NewPostingUseCase(txManager, accountRepo, productRepo, postingRepo, calendarRepo, outboxRepo, idGen)
	accrualUC := usecase.NewAccrualUseCase(txManager, accountRepo, productRepo, postingRepo, idGen)
	applicationUC := usecase.NewApplicationUseCase(txManager, accountRepo, productRepo, postingRepo, scheduleRepo, calendarRepo, outboxRepo, idGen)

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(accountUC, outboxRepo)
	postingHandler := handler.NewPostingHandler(postingUC)
	interestHandler := handler.NewInterestHandler(accrualUC, applicationUC, scheduleRepo)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   accountHandler,
		PostingHandler:   postingHandler,
		InterestHandler:  interestHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		RateLimiter:      middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Logger:           appLogger,
	})

	// Start the outbox publisher
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()

	retrier := postgresRepo.NewRetrier(appLogger)
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: postgresRepo.NewRetryingOutboxRepository(outboxRepo, retrier),
		Publisher:  eventpublisher.NewLogPublisher(appLogger),
		Logger:     appLogger,
		Metrics:    appMetrics,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil {
			log.Error().Err(err).Msg("outbox publisher stopped")
		}
	}()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	stopPublisher()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
