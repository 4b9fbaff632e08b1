package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/takapay/takapay/internal/adapter/http"
	"github.com/takapay/takapay/internal/adapter/http/handler"
	"github.com/takapay/takapay/internal/adapter/http/middleware"
	postgresRepo "github.com/takapay/takapay/internal/adapter/repository/postgres"
	redisRepo "github.com/takapay/takapay/internal/adapter/repository/redis"
	"github.com/takapay/takapay/internal/domain"
	"github.com/takapay/takapay/internal/infrastructure/auth"
	"github.com/takapay/takapay/internal/infrastructure/config"
	"github.com/takapay/takapay/internal/infrastructure/eventpublisher"
	"github.com/takapay/takapay/internal/infrastructure/logger"
	"github.com/takapay/takapay/internal/infrastructure/metrics"
	"github.com/takapay/takapay/internal/infrastructure/postgres"
	"github.com/takapay/takapay/internal/infrastructure/redis"
	"github.com/takapay/takapay/internal/infrastructure/sweeper"
	"github.com/takapay/takapay/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// Run migrations
	if cfg.MigrationsPath != "" {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
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

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	requestRepo := postgresRepo.NewRequestRepository(pool)
	ledgerRepo := postgresRepo.NewTransactionRepository(pool)
	feeRepo := postgresRepo.NewFeeSettingsRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	cache := redisRepo.NewCache(redisClient)
	feeProvider := redisRepo.NewCachedFeeSettings(feeRepo, cache)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	m := metrics.New()

	// Initialize use cases
	requestUC := usecase.NewRequestUseCase(
		txManager, accountRepo, requestRepo, ledgerRepo,
		feeProvider, outboxRepo, auditRepo, idGen, idGen, m, cfg.RequestTTL)
	if !cfg.RefundOnRejection {
		requestUC.RejectionPolicy = func(*domain.MoneyRequest) bool { return false }
	}
	transferUC := usecase.NewTransferUseCase(
		txManager, accountRepo, ledgerRepo, outboxRepo, auditRepo, idGen, idGen, m)
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, outboxRepo, auditRepo, idGen)
	ledgerUC := usecase.NewLedgerUseCase(accountRepo, ledgerRepo)

	// Initialize handlers
	requestHandler := handler.NewRequestHandler(requestUC)
	accountHandler := handler.NewAccountHandler(accountUC)
	transferHandler := handler.NewTransferHandler(transferUC)
	transactionHandler := handler.NewTransactionHandler(ledgerUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Authentication
	var authMiddleware func(http.Handler) http.Handler
	if cfg.AuthEnabled {
		jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		authMiddleware = middleware.AuthMiddleware(jwtManager)
	} else {
		log.Warn().Msg("authentication disabled, using header identities")
		authMiddleware = middleware.HeaderAuth
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		RequestHandler:     requestHandler,
		AccountHandler:     accountHandler,
		TransferHandler:    transferHandler,
		TransactionHandler: transactionHandler,
		HealthHandler:      healthHandler,
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		RateLimiter:        middleware.NewRateLimiter(50, 100, m),
		Logger:             log.Logger,
		Metrics:            m,
		Auth:               authMiddleware,
	})

	// Background workers
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(nil),
		Metrics:    m,
		BatchSize:  cfg.PublishBatchSize,
		Interval:   cfg.PublishInterval,
	})
	go func() {
		if err := publisher.Start(workerCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	sweep := sweeper.New(sweeper.Config{
		Requests:  requestUC,
		BatchSize: cfg.SweepBatchSize,
		Interval:  cfg.SweepInterval,
	})
	go func() {
		if err := sweep.Start(workerCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("request sweeper stopped")
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
	stopWorkers()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
