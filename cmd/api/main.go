package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contact-backend/config"
	_ "contact-backend/docs" // Important for Swagger
	"contact-backend/internal/delivery/http/middleware"
	v1 "contact-backend/internal/delivery/http/v1"
	"contact-backend/internal/repository/postgres"
	"contact-backend/internal/usecase"
	"contact-backend/pkg/database"
	"contact-backend/pkg/email"
	"contact-backend/pkg/logger"
	"contact-backend/pkg/redis"
	"contact-backend/pkg/security"
	"contact-backend/pkg/validation"
)

const serviceName = "contact-backend"

// @title           Contact Backend API
// @version         1.0
// @description     Contact form backend: saves submissions and relays them by email.
// @host            localhost:5000
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting contact backend", cfg.Redacted()...)

	secLog := security.InitSecurityLogger(serviceName, cfg.Env)

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Log.Info("Connected to database")

	secLog.SetPersistFunc(security.NewSecurityEventRepository(dbPool).PersistEvent)
	// Deferred after the pool so queued events are written before it closes.
	defer func() { _ = secLog.Close() }()

	// 4. Setup Redis (optional)
	var (
		rateCounter middleware.WindowCounter
		cachePinger usecase.Pinger
	)
	redisClient, err := redis.New(ctx, redis.Config{
		URL:      cfg.UpstashRedisURL,
		Password: cfg.UpstashRedisPassword,
	})
	switch {
	case err == nil:
		defer redisClient.Close()
		rateCounter = redisClient
		cachePinger = redisClient
		logger.Log.Info("Connected to redis")
	case errors.Is(err, redis.ErrNotConfigured):
		logger.Log.Warn("UPSTASH_REDIS_URL not configured, rate limiting uses in-memory store")
	default:
		logger.Log.Warn("Redis unavailable, rate limiting uses in-memory store", "error", err)
	}

	// 5. Setup Email Service
	emailService := email.NewEmailService(cfg)
	go func() {
		verifyCtx, cancel := context.WithTimeout(ctx, cfg.SMTPTimeout)
		defer cancel()
		if err := emailService.Verify(verifyCtx); err != nil {
			logger.Log.Error("Email transporter error", "error", err)
			return
		}
		logger.Log.Info("Email transporter ready")
	}()

	// 6. Setup Repositories and UseCases
	contactRepo := postgres.NewContactRepository(dbPool)
	contactUC := usecase.NewContactUsecase(contactRepo, contactRepo, emailService, emailService.Mailbox(), validation.New(), secLog)
	healthUC := usecase.NewHealthUsecase(dbPool, cachePinger)

	// 7. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ContactUC:      contactUC,
		HealthUC:       healthUC,
		RateCounter:    rateCounter,
		SecurityLogger: secLog,
		Config:         cfg,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
