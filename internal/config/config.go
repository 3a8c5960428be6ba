package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Strategy names for the request limiter.
const (
	RateLimitCooldown = "cooldown"
	RateLimitWindow   = "window"
)

// Quote provider names.
const (
	ProviderPolygon = "polygon"
	ProviderFinnhub = "finnhub"
)

// Config holds all application settings.
type Config struct {
	Database  DatabaseConfig
	AI        AIConfig
	Market    MarketConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Telegram  TelegramConfig
	Port      int
	LogLevel  string
}

type DatabaseConfig struct {
	ConnString      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type MarketConfig struct {
	Provider      string
	PolygonAPIKey string
	FinnhubAPIKey string
}

type RateLimitConfig struct {
	Strategy string
	Window   time.Duration
	Limit    int
}

// RedisConfig is optional; when Addr is empty the in-memory counter store
// is used.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// TelegramConfig is optional; when BotToken is empty the notifier stays
// disabled.
type TelegramConfig struct {
	BotToken string
	ChatID   int64
}

// Load reads configuration from the environment, with .env support.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	maxOpenConns, err := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}

	maxIdleConns, err := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %w", err)
	}

	connMaxLifetime, err := time.ParseDuration(getEnv("DB_CONN_MAX_LIFETIME", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}

	rateLimitWindow, err := time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}

	rateLimitMax, err := strconv.Atoi(getEnv("RATE_LIMIT_MAX", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_MAX: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	chatID, err := strconv.ParseInt(getEnv("TELEGRAM_CHAT_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	config := &Config{
		Database: DatabaseConfig{
			ConnString:      getEnv("DATABASE_URL", ""),
			MaxOpenConns:    maxOpenConns,
			MaxIdleConns:    maxIdleConns,
			ConnMaxLifetime: connMaxLifetime,
		},
		AI: AIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
			Model:   getEnv("OPENAI_MODEL", "gpt-4.1"),
		},
		Market: MarketConfig{
			Provider:      getEnv("MARKET_DATA_PROVIDER", ProviderPolygon),
			PolygonAPIKey: getEnv("POLYGON_API_KEY", ""),
			FinnhubAPIKey: getEnv("FINNHUB_API_KEY", ""),
		},
		RateLimit: RateLimitConfig{
			Strategy: getEnv("RATE_LIMIT_STRATEGY", RateLimitWindow),
			Window:   rateLimitWindow,
			Limit:    rateLimitMax,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   chatID,
		},
		Port:     port,
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks required fields and enum-valued settings.
func (c *Config) Validate() error {
	if c.Database.ConnString == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.AI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.Market.Provider != ProviderPolygon && c.Market.Provider != ProviderFinnhub {
		return fmt.Errorf("MARKET_DATA_PROVIDER must be %q or %q", ProviderPolygon, ProviderFinnhub)
	}
	if c.RateLimit.Strategy != RateLimitCooldown && c.RateLimit.Strategy != RateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_STRATEGY must be %q or %q", RateLimitCooldown, RateLimitWindow)
	}
	if c.RateLimit.Limit <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX must be positive")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
