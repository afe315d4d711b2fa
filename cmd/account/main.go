package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moviestack/moviestack/internal/account/handler"
	"github.com/moviestack/moviestack/internal/account/repository"
	"github.com/moviestack/moviestack/internal/account/service"
	"github.com/moviestack/moviestack/pkg/auth"
	"github.com/moviestack/moviestack/pkg/config"
	"github.com/moviestack/moviestack/pkg/database"
	"github.com/moviestack/moviestack/pkg/interfaces"
	"github.com/moviestack/moviestack/pkg/logger"
	"github.com/moviestack/moviestack/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.MustLoadServiceConfig("account", config.GetDefaultAccountConfig())

	// Initialize logger
	log := logger.New()

	log.Info("Account service starting",
		interfaces.String("version", cfg.Service.Version),
		interfaces.String("environment", cfg.Service.Environment))

	// Connect to database
	log.Info("Connecting to database...")
	db, err := database.NewGormDB(cfg.Database.ToDatabaseConfig())
	if err != nil {
		log.Fatal("Failed to connect to database", interfaces.Error(err))
	}

	// Run migrations
	log.Info("Running database migrations...")
	if err := database.MigrateAccountSchema(db); err != nil {
		log.Fatal("Failed to run migrations", interfaces.Error(err))
	}

	// Initialize cache
	cacheClient := utils.NewInMemoryCache()

	// Initialize JWT manager
	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		if config.IsProduction(&cfg.Service) {
			log.Fatal("JWT secret must be set in production")
		}
		jwtSecret = auth.GenerateSecret()
		log.Warn("Using generated JWT secret for development")
	}

	jwtManager := auth.NewJWTManager(
		jwtSecret,
		jwtSecret,
		cfg.Service.Name,
		cfg.Auth.AccessTokenDuration,
		cfg.Auth.RefreshTokenDuration,
	)

	// Initialize repository and service
	store := repository.NewGormAccountStore(db)
	accountService := service.NewAccountService(store, jwtManager, cacheClient, log)

	// Initialize HTTP server
	srv := handler.NewServer(accountService, log)
	httpServer := &http.Server{
		Addr:         config.ListenAddress(&cfg.Service),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", interfaces.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", interfaces.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down account service...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", interfaces.Error(err))
	}

	log.Info("Account service stopped")
}
