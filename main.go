package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"

	"sjsage522/jobcrawler/config"
	"sjsage522/jobcrawler/helpers"
	"sjsage522/jobcrawler/internal/crawler"
	"sjsage522/jobcrawler/internal/persister"
	"sjsage522/jobcrawler/internal/store"
	"sjsage522/jobcrawler/logger"
	"sjsage522/jobcrawler/services/cache"
	"sjsage522/jobcrawler/services/publisher"
	"sjsage522/jobcrawler/services/summarizer"
	"sjsage522/jobcrawler/services/worker"
)

func main() {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// One daemon per data directory
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("data_dir", cfg.DataDir).Msg("Failed to create data dir")
	}
	lock := flock.New(filepath.Join(cfg.DataDir, "jobcrawler.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to lock data dir")
	}
	if !locked {
		log.Fatal().Str("data_dir", cfg.DataDir).Msg("Another jobcrawler is already using this data dir")
	}
	defer lock.Unlock()

	log.Info().
		Str("environment", cfg.Environment).
		Dur("crawl_interval", cfg.CrawlInterval).
		Bool("run_once", cfg.RunOnce).
		Msg("Starting application")

	// Set up context with cancellation on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize services
	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	sources, err := crawler.CreateSources(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load sources")
	}
	if len(sources) == 0 {
		log.Fatal().Msg("No sources were configured")
	}
	for _, s := range sources {
		log.Info().
			Str("source", s.Adapter.Name()).
			Str("url", s.ListingsURL).
			Int("request_limit", s.RequestLimit).
			Msg("Configured source")
	}

	c := crawler.New(
		crawler.NewHTTPFetcher(helpers.NewClient(cfg.FetchTimeout), services.Cache, cfg.BlockTime),
		services.Store,
		persister.New(services.Store, services.Summarizer, services.Publisher),
		cfg.RequestDelay,
	)
	crawler.SetDefault(c)

	w := worker.NewWorker(c, sources, services.Publisher, cfg.CrawlInterval, cfg.MaxParallelSources)

	if cfg.RunOnce {
		saved := w.RunOnce(ctx)
		log.Info().Int("saved", saved).Msg("Single pass finished")
		return
	}

	log.Info().Msg("Starting job crawler worker")
	if err := w.Start(ctx); err != nil {
		log.Error().Err(err).Msg("Worker exited with error")
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
}

// Services holds all the initialized services
type Services struct {
	Store      *store.Store
	Cache      cache.CacheService
	Publisher  publisher.Publisher
	Summarizer summarizer.Summarizer
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		if err := s.Publisher.Close(); err != nil {
			logger.LogError("main", err, "Failed to close publisher")
		}
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			logger.LogError("main", err, "Failed to close store")
		}
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{Publisher: publisher.Nop{}}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	services.Store = st
	logger.Info("Opened job store at %s", cfg.DatabasePath)

	// Initialize cache service
	if cfg.MemcacheAddr != "" {
		mc := cache.NewMemcacheService(cfg.MemcacheAddr, "jobcrawler:")
		if err := mc.Ping(); err != nil {
			logger.Warn("Memcache at %s is not reachable, rate-limit blocks are disabled: %v", cfg.MemcacheAddr, err)
		} else {
			services.Cache = mc
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}

	// Initialize publisher
	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(ctx, publisher.RedisOptions{
			Addr:            cfg.RedisAddr,
			DB:              cfg.RedisDB,
			StreamPrefix:    cfg.RedisStream,
			StreamCount:     cfg.RedisStreamCount,
			StreamMaxLength: cfg.RedisStreamMaxLength,
		})
		if err := redisPublisher.Ping(); err != nil {
			_ = redisPublisher.Close()
			services.Cleanup()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		services.Publisher = redisPublisher
		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	summ, err := summarizer.New(summarizer.Config{
		Kind:    cfg.Summarizer,
		BaseURL: cfg.SummarizerURL,
		Model:   cfg.SummarizerModel,
		APIKey:  cfg.SummarizerAPIKey,
		Timeout: cfg.FetchTimeout,
	})
	if err != nil {
		services.Cleanup()
		return nil, err
	}
	services.Summarizer = summ

	return services, nil
}
