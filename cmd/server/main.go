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

	"github.com/frostyapps/cortex-demos/internal/api/handlers"
	"github.com/frostyapps/cortex-demos/internal/config"
	"github.com/frostyapps/cortex-demos/internal/cortex"
	"github.com/frostyapps/cortex-demos/internal/database"
	"github.com/frostyapps/cortex-demos/internal/health"
	"github.com/frostyapps/cortex-demos/internal/middleware"
	"github.com/frostyapps/cortex-demos/internal/migration"
	"github.com/frostyapps/cortex-demos/internal/recommender"
	"github.com/frostyapps/cortex-demos/internal/repository"
	"github.com/frostyapps/cortex-demos/internal/session"
	"github.com/frostyapps/cortex-demos/internal/tarot"
	"github.com/frostyapps/cortex-demos/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const serviceName = "cortex-demos"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	logger.Info("Starting cortex demos server...")

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.ValidateCortex(); err != nil {
		logger.WithError(err).Fatal("Cortex configuration validation failed")
	}
	if err := cfg.ValidateStorage(); err != nil {
		logger.WithError(err).Fatal("Storage configuration validation failed")
	}

	dbManager, err := database.NewManager(&database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if err := migration.NewRunner(dbManager.DB, dbManager, logger).RunMigrations(cfg.MigrationsPath); err != nil {
		logger.WithError(err).Fatal("Database migrations failed")
	}

	repoManager := repository.NewRepositoryManager(dbManager.DB)

	cortexClient := cortex.NewClient(cortex.ClientConfig{
		AccountURL: cfg.Cortex.AccountURL,
		Token:      cfg.Cortex.Token,
		TokenType:  cfg.Cortex.TokenType,
		Database:   cfg.Cortex.Database,
		Schema:     cfg.Cortex.Schema,
		Timeout:    cfg.Cortex.Timeout,
	}, logger)
	cortexAPI := cortex.NewRetrying(cortexClient, cortex.DefaultRetryConfig())

	deck, err := tarot.NewBucketDeck(tarot.BucketConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize card deck")
	}

	sessions, results := sessionBackend(cfg, dbManager)
	tarotService := tarot.NewService(deck, cortexAPI, tarot.NewShuffler(time.Now().UnixNano()), cfg.Tarot.Model, logger)
	movieService := recommender.NewService(cortexAPI, cortexAPI, sessions, repoManager.AnswerLog, results, recommender.Config{
		MetadataTTL:    cfg.Movies.MetadataTTL,
		SearchCacheTTL: cfg.Movies.SearchCacheTTL,
	}, logger)

	checks := []health.Check{
		{Name: "postgresql", Critical: true, Ping: dbManager.PingDatabase},
		{Name: "cortex", Critical: true, Ping: cortexClient.Ping},
		{Name: "card_bucket", Critical: true, Ping: deck.Ping},
	}
	if dbManager.Redis != nil {
		checks = append(checks, health.Check{Name: "redis", Ping: dbManager.PingRedis})
	}
	healthChecker := health.NewHealthChecker(repoManager.SystemHealth, logger, checks...)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecurityHeaders())

	rateLimiter := middleware.NewRateLimiter(cfg.Server.RateLimit)
	defer rateLimiter.Stop()
	router.Use(rateLimiter.RateLimit())

	requestTimeout := cfg.Cortex.Timeout + 30*time.Second
	(&handlers.Handlers{
		Health: handlers.NewHealthHandler(healthChecker, serviceName),
		Tarot:  handlers.NewTarotHandler(tarotService, requestTimeout, logger),
		Movies: handlers.NewMoviesHandler(movieService, requestTimeout, logger),
	}).Register(router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	healthChecker.CheckAll(ctx)
	go healthChecker.PeriodicHealthCheck(ctx, cfg.Health.Interval)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// sessionBackend picks where chat sessions live. Search results are only
// cached when redis is available.
func sessionBackend(cfg *config.Config, dbManager *database.Manager) (session.Store, recommender.ResultCache) {
	logger := utils.GetLogger()

	if dbManager.Redis == nil {
		logger.Warn("Redis not configured, using in-memory chat sessions without search caching")
		return session.NewMemoryStore(cfg.Movies.SessionTTL), nil
	}

	results := database.NewCache(dbManager.Redis, logger)
	if cfg.Movies.SessionBackend == "memory" {
		return session.NewMemoryStore(cfg.Movies.SessionTTL), results
	}
	return session.NewRedisStore(dbManager.Redis, cfg.Movies.SessionTTL), results
}
