package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"freelanceradar/api"
	"freelanceradar/config"
	"freelanceradar/internal/scraper"
	"freelanceradar/logger"
	"freelanceradar/services/aggregator"
	"freelanceradar/services/cache"
	"freelanceradar/services/notifier"
	"freelanceradar/services/publisher"
	"freelanceradar/services/worker"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("http_addr", cfg.HTTPAddr).
		Dur("cache_ttl", cfg.CacheTTL).
		Dur("watch_interval", cfg.WatchInterval).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Assemble the aggregation pipeline
	agg := aggregator.New(
		cache.NewMemoryCache(),
		scraper.NewWorkanaScraper(cfg.WorkanaURL, nil),
		scraper.NewFreelancerScraper(cfg.FreelancerURL, nil),
		scraper.NewRelevanceFilter(cfg.PriceFloor),
		cfg.CacheTTL,
	)

	// Optional side channels
	notif := notifier.FromConfig(cfg.TelegramBotToken, cfg.TelegramChatID)

	var pub publisher.Publisher
	if cfg.RedisAddr != "" {
		redisPub := publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamCount,
			cfg.RedisStreamMaxLength,
		)
		defer redisPub.Close()
		pub = redisPub

		log.Info().
			Str("addr", cfg.RedisAddr).
			Str("stream", cfg.RedisStream).
			Msg("Connected to Redis")
	}

	// Start the background watcher
	w := worker.NewWatcher(ctx, agg, pub, notif, cfg.WatchInterval)
	watcherDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting listing watcher")
		watcherDone <- w.Start()
	}()

	// Start the HTTP server
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewServer(agg).Router(),
	}
	serverDone := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("Starting HTTP server")
		serverDone <- server.ListenAndServe()
	}()

	// Wait for shutdown signal or component failure
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
	case err := <-serverDone:
		log.Error().Err(err).Msg("HTTP server exited")
	case err := <-watcherDone:
		if err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Watcher exited with error")
		}
	}

	// Graceful shutdown
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	log.Info().Msg("Shutting down gracefully...")
}
