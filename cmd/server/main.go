package main

import (
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kirillm/thesis-desk/internal/ai"
	"github.com/kirillm/thesis-desk/internal/api"
	"github.com/kirillm/thesis-desk/internal/config"
	"github.com/kirillm/thesis-desk/internal/market"
	"github.com/kirillm/thesis-desk/internal/notify"
	"github.com/kirillm/thesis-desk/internal/ratelimit"
	"github.com/kirillm/thesis-desk/internal/storage"
	"github.com/kirillm/thesis-desk/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting thesis desk on port %d", cfg.Port)

	store, err := storage.NewPostgresStorage(
		cfg.Database.ConnString,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	logger.Info("Database schema ready")

	generator := ai.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model)

	provider := buildProvider(cfg)
	fetcher := market.NewFetcher(provider, logger.Component("market"))
	logger.Info("Market data provider: %s", provider.Name())

	limiter := buildLimiter(cfg, logger)

	var notifier api.Notifier
	if cfg.Telegram.BotToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger.Component("telegram"))
		if err != nil {
			log.Fatalf("Failed to create telegram notifier: %v", err)
		}
		notifier = tg
	}

	server := api.NewServer(
		logger,
		generator,
		fetcher,
		store.Theses(),
		store.Trades(),
		store.Community(),
		limiter,
		notifier,
		cfg.Port,
	)

	if err := server.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func buildProvider(cfg *config.Config) market.Provider {
	switch cfg.Market.Provider {
	case config.ProviderFinnhub:
		return market.NewFinnhubProvider(cfg.Market.FinnhubAPIKey, "")
	default:
		return market.NewPolygonProvider(cfg.Market.PolygonAPIKey, "")
	}
}

func buildLimiter(cfg *config.Config, logger *utils.Logger) ratelimit.Limiter {
	if cfg.RateLimit.Strategy == config.RateLimitCooldown {
		return ratelimit.NewCooldown(cfg.RateLimit.Window)
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		logger.Info("Rate limiter backed by redis at %s", cfg.Redis.Addr)
		store := ratelimit.NewRedisStore(client, "thesis-desk")
		return ratelimit.NewFixedWindow(cfg.RateLimit.Limit, cfg.RateLimit.Window, store)
	}

	store := ratelimit.NewMemoryStore()
	go func() {
		ticker := time.NewTicker(cfg.RateLimit.Window)
		defer ticker.Stop()
		for range ticker.C {
			store.Cleanup(cfg.RateLimit.Window)
		}
	}()
	return ratelimit.NewFixedWindow(cfg.RateLimit.Limit, cfg.RateLimit.Window, store)
}
