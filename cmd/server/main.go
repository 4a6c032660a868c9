package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/revaspay/paygate/internal/config"
	"github.com/revaspay/paygate/internal/database"
	"github.com/revaspay/paygate/internal/events"
	"github.com/revaspay/paygate/internal/handlers"
	"github.com/revaspay/paygate/internal/jobs"
	"github.com/revaspay/paygate/internal/logger"
	"github.com/revaspay/paygate/internal/metrics"
	"github.com/revaspay/paygate/internal/middleware"
	"github.com/revaspay/paygate/internal/routes"
	"github.com/revaspay/paygate/internal/security/audit"
	"github.com/revaspay/paygate/internal/services/payment/paygate"
)

func main() {
	cfg := config.LoadConfig()

	log, err := logger.New(cfg.Environment)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if logger.IsProduction(cfg.Environment) {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Init()

	// Initialize database
	db, err := database.InitDB(cfg.Database, log)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	ctx := context.Background()
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}

	// Gateway client
	client, err := paygate.NewClient(cfg.PayGate, log)
	if err != nil {
		log.Fatal("failed to initialize paygate client", zap.Error(err))
	}
	log.Info("paygate client ready", zap.String("callback_url", client.CallbackURL()))

	store := database.NewTransactionStore(db)
	auditLogger := audit.NewLogger(db)

	// Accepted webhooks are persisted first, then broadcast
	dispatcher := events.NewDispatcher(log)
	dispatcher.SubscribeRequired("transactions", events.SinkFunc(store.RecordPayment))
	dispatcher.Subscribe("redis", events.NewRedisPublisher(redisClient, cfg.Redis.Channel))

	if cfg.PayGate.WebhookSecret == "" {
		log.Warn("PAYGATE_GLOBAL_WEBHOOK_SECRET is not set, webhook signatures will not be verified")
	}
	processor := paygate.NewWebhookProcessor(cfg.PayGate.WebhookSecret, dispatcher, log)

	// Initialize handlers
	payGateHandler := handlers.NewPayGateHandler(client, store, auditLogger,
		absoluteURL(cfg.FrontendURL, cfg.PayGate.SuccessURL), log)
	webhookHandler := handlers.NewWebhookHandler(processor, auditLogger, log)

	webhookLimiter := middleware.NewRateLimiter(cfg.Server.WebhookRateRPS, cfg.Server.WebhookRateBurst)
	defer webhookLimiter.Stop()

	// Initialize Gin router
	router := gin.New()
	router.Use(middleware.RequestLogger(log.Named("http")))
	router.Use(middleware.Recovery(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{cfg.FrontendURL},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.APIKeyHeader},
		ExposeHeaders: []string{"Content-Length"},
	}))
	router.Use(middleware.SecureHeadersMiddleware(
		middleware.DefaultSecureHeadersConfig(logger.IsProduction(cfg.Environment))))

	// Setup routes
	routes.RegisterHealthRoutes(router, map[string]routes.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	})
	routes.RegisterMetricsRoute(router)
	routes.SetupPayGateRoutes(router, payGateHandler, cfg.Server.APIKey)
	routes.SetupWebhookRoutes(router, cfg.PayGate.WebhookRoute, webhookHandler, webhookLimiter)

	if cfg.Server.APIKey == "" {
		log.Warn("MERCHANT_API_KEY is not set, the merchant API is unauthenticated")
	}

	// Schedule status reconciliation
	jobCtx, stopJobs := context.WithCancel(ctx)
	reconcileJob := jobs.NewReconcileJob(client, store, cfg.Jobs.ReconcileBatch, log)
	if err := reconcileJob.Schedule(jobCtx, cfg.Jobs.ReconcileInterval); err != nil {
		log.Fatal("failed to schedule reconciliation", zap.Error(err))
	}

	// Start server
	srv := startServer(router, cfg.Server, log)

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	stopJobs()
	reconcileJob.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exiting")
}

// startServer starts the HTTP server
func startServer(router *gin.Engine, cfg config.ServerConfig, log *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	log.Info("server started", zap.String("port", cfg.Port))
	return srv
}

// absoluteURL resolves a path against base; absolute URLs are returned unchanged
func absoluteURL(base, path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
