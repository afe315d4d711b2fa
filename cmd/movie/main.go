package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moviestack/moviestack/internal/infrastructure/events/kafka"
	"github.com/moviestack/moviestack/internal/infrastructure/events/nats"
	"github.com/moviestack/moviestack/internal/movie/handler"
	"github.com/moviestack/moviestack/internal/movie/repository"
	"github.com/moviestack/moviestack/internal/movie/service"
	"github.com/moviestack/moviestack/pkg/config"
	"github.com/moviestack/moviestack/pkg/database"
	"github.com/moviestack/moviestack/pkg/events"
	"github.com/moviestack/moviestack/pkg/interfaces"
	"github.com/moviestack/moviestack/pkg/logger"
	"github.com/moviestack/moviestack/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.MustLoadServiceConfig("movie", config.GetDefaultMovieConfig())

	// Initialize logger
	log := logger.New()

	log.Info("Movie service starting",
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
	if err := database.MigrateMovieSchema(db); err != nil {
		log.Fatal("Failed to run migrations", interfaces.Error(err))
	}

	// Initialize cache and event bus
	cacheClient := utils.NewInMemoryCache()
	eventBus := events.NewInMemoryEventBus(log)

	// Initialize repositories
	store := repository.NewGormMovieStore(db)
	index := repository.NewGormMovieIndex(db)
	likes := repository.NewGormLikeStore(db)

	// Keep the search index in step with the store
	synchronizer := service.NewIndexSynchronizer(index, log)
	if err := synchronizer.Register(eventBus); err != nil {
		log.Fatal("Failed to register index synchronizer", interfaces.Error(err))
	}

	// Optionally relay events to an external broker
	cleanupBroker := registerBroker(cfg, eventBus, log)
	defer cleanupBroker()

	// Initialize service and HTTP server
	movieService := service.NewMovieService(
		store, index, likes, eventBus, cacheClient, log,
		cfg.Pagination.DefaultPageSize, cfg.Pagination.MaxPageSize,
	)
	srv := handler.NewServer(movieService, log)

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

	log.Info("Shutting down movie service...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", interfaces.Error(err))
	}

	// Let in-flight index updates and relays settle
	if err := eventBus.Stop(); err != nil {
		log.Error("Event bus shutdown failed", interfaces.Error(err))
	}

	log.Info("Movie service stopped")
}

// registerBroker wires the configured external broker, if any, into the
// event bus and returns its cleanup.
func registerBroker(cfg *config.MovieConfig, bus interfaces.EventBus, log interfaces.Logger) func() {
	switch {
	case cfg.Broker.NATSURL != "":
		client, cleanup, err := nats.NewClient(cfg.Broker.NATSURL, cfg.Broker.NATSStream, log)
		if err != nil {
			log.Fatal("Failed to connect to NATS", interfaces.Error(err))
		}
		if err := nats.NewPublisher(client, log).Register(bus); err != nil {
			log.Fatal("Failed to register NATS relay", interfaces.Error(err))
		}
		return cleanup

	case len(cfg.Broker.KafkaBrokers) > 0:
		publisher, err := kafka.NewPublisher(cfg.Broker.KafkaBrokers, cfg.Broker.KafkaTopic, log)
		if err != nil {
			log.Fatal("Failed to create Kafka producer", interfaces.Error(err))
		}
		if err := publisher.Register(bus); err != nil {
			log.Fatal("Failed to register Kafka relay", interfaces.Error(err))
		}
		return func() {
			if err := publisher.Close(); err != nil {
				log.Error("Failed to close Kafka producer", interfaces.Error(err))
			}
		}

	default:
		return func() {}
	}
}
