package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"arodriguez/craigwatch/config"
	"arodriguez/craigwatch/internal/digest"
	"arodriguez/craigwatch/internal/fetcher"
	"arodriguez/craigwatch/internal/pipeline"
	"arodriguez/craigwatch/internal/search"
	"arodriguez/craigwatch/logger"
	"arodriguez/craigwatch/services/cache"
	"arodriguez/craigwatch/services/notifier"
	"arodriguez/craigwatch/services/scheduler"
	"arodriguez/craigwatch/services/seenstore"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	criteria := search.CriteriaFromConfig(cfg)

	log.Info().
		Str("environment", cfg.Environment).
		Strs("locations", criteria.Locations).
		Strs("categories", criteria.Categories).
		Str("send_time", cfg.SendTime).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Optional memcache-backed rate-limit blocking
	var cacheSvc cache.CacheService
	if cfg.MemcacheAddr != "" {
		cacheSvc = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
	}

	// Seen-listing store; an unreadable file starts us with an empty store
	store := seenstore.New(cfg.SeenFile, cfg.SeenMax)
	if err := store.Load(); err != nil {
		log.Warn().Err(err).Msg("Failed to load seen listings, starting empty")
	}
	log.Info().
		Int("entries", store.Len()).
		Str("file", cfg.SeenFile).
		Msg("Seen-listing store loaded")

	p := pipeline.New(
		criteria,
		fetcher.NewFetcher(criteria, cacheSvc, cfg.RateLimitBlock, cfg.FetchMaxAttempts, cfg.FetchRetryDelay),
		fetcher.NewEnricher(),
		store,
		digest.NewComposer(),
		notifier.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SenderEmail, cfg.SenderPassword, cfg.RecipientEmail),
		cfg.NotifyMaxAttempts,
		cfg.NotifyRetryDelay,
	)

	hour, minute, err := config.ParseSendTime(cfg.SendTime)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid send time")
	}

	sched := scheduler.New(hour, minute, func(ctx context.Context) {
		if err := p.RunCycle(ctx); err != nil {
			log.Error().Err(err).Msg("Cycle aborted")
		}
	})
	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info().
		Str("signal", sig.String()).
		Msg("Received shutdown signal")

	cancel()
	sched.Stop()
	log.Info().Msg("Shutting down gracefully...")
}
