package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appbidding "github.com/auctionhouse/backend/internal/application/bidding"
	appevent "github.com/auctionhouse/backend/internal/application/event"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/infrastructure/cache"
	"github.com/auctionhouse/backend/internal/infrastructure/config"
	"github.com/auctionhouse/backend/internal/infrastructure/event"
	"github.com/auctionhouse/backend/internal/infrastructure/lock"
	"github.com/auctionhouse/backend/internal/infrastructure/logger"
	"github.com/auctionhouse/backend/internal/infrastructure/persistence"
	"github.com/auctionhouse/backend/internal/interfaces/http/handler"
	"github.com/auctionhouse/backend/internal/interfaces/http/middleware"
	"github.com/auctionhouse/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting auction bidding engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Redis backs both the per-auction lock and the idempotency result cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to ping redis", zap.Error(err))
		}
	}
	log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))

	locker := lock.NewRedisAuctionLocker(redisClient, "")
	results := cache.NewRedisResultStore(redisClient, "")

	// Outbox: events commit with the state they describe, then a background
	// processor delivers them to the in-process bus
	serializer := event.NewBiddingEventSerializer()
	outboxPublisher := event.NewOutboxPublisher(serializer)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	scope := persistence.NewGormTransactionScope(db.DB, outboxPublisher)

	// Application services
	engineConfig := appbidding.EngineConfig{
		LockTTL:           cfg.Bidding.LockTTL,
		CascadeLockTTL:    cfg.Bidding.CascadeLockTTL,
		LockWait:          cfg.Bidding.LockWait,
		LockRetryInterval: cfg.Bidding.LockRetryInterval,
		IdempotencyWindow: cfg.Bidding.IdempotencyWindow,
		SnipeThreshold:    cfg.Bidding.SnipeThreshold,
		SnipeExtension:    cfg.Bidding.SnipeExtension,
		MaxCascadeDepth:   cfg.Bidding.MaxCascadeDepth,
	}
	bidEngine := appbidding.NewBidEngine(scope, locker, results, engineConfig, log)
	autoBidService := appbidding.NewAutoBidService(scope, locker, engineConfig, log)
	queryService := appbidding.NewBidQueryService(
		persistence.NewGormBidRepository(db.DB),
		persistence.NewGormAuctionRepository(db.DB),
	)
	outboxService := appevent.NewOutboxService(outboxRepo, log)

	// Event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	auctionFinishedHandler := appbidding.NewAuctionFinishedHandler(autoBidService, log)
	eventBus.Subscribe(event.NewIdempotentHandler(
		auctionFinishedHandler,
		results,
		shared.DefaultIdempotencyConfig(),
		log,
	), auctionFinishedHandler.EventTypes()...)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	if cfg.Event.ProcessorEnabled {
		processorConfig := event.DefaultOutboxProcessorConfig()
		processorConfig.BatchSize = cfg.Event.BatchSize
		processorConfig.PollInterval = cfg.Event.PollInterval
		processorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		processorConfig.CleanupRetention = cfg.Event.CleanupRetention

		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, serializer, processorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", processorConfig.BatchSize),
			zap.Duration("poll_interval", processorConfig.PollInterval),
		)
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Liveness probe outside the versioned API
	engine.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	systemHandler := handler.NewSystemHandler(map[string]handler.HealthChecker{
		"database": func(_ context.Context) error { return db.Ping() },
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	})

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewBiddingHandler(bidEngine, queryService)).
		Register(handler.NewAutoBidHandler(autoBidService)).
		Register(handler.NewOutboxHandler(outboxService)).
		Register(systemHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
