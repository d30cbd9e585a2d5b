package config

import (
	"os"
	"strconv"
	"time"

	"freelanceradar/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// HTTP API configuration
	HTTPAddr string

	// Cache configuration
	CacheTTL time.Duration

	// Background watcher configuration
	WatchInterval time.Duration

	// URLs for the upstream sources
	WorkanaURL    string
	FreelancerURL string

	// Minimum budget in USD for bid listings
	PriceFloor int

	// Telegram configuration (optional; notifications are disabled when unset)
	TelegramBotToken string
	TelegramChatID   int64

	// Redis configuration (optional; stream publishing is disabled when unset)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Environment
	Environment string
}

// Load loads the configuration from environment variables with defaults
func Load() Config {
	cacheTTL, _ := strconv.Atoi(getEnv("CACHE_DURATION_SECONDS", "60"))
	watchInterval, _ := strconv.Atoi(getEnv("WATCH_INTERVAL_SECONDS", "300"))
	priceFloor, _ := strconv.Atoi(getEnv("PRICE_FLOOR_USD", "50"))
	chatID, _ := strconv.ParseInt(getEnv("TELEGRAM_CHAT_ID", "0"), 10, 64)
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	redisStreamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))

	return Config{
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		CacheTTL:             time.Duration(cacheTTL) * time.Second,
		WatchInterval:        time.Duration(watchInterval) * time.Second,
		WorkanaURL:           getEnv("WORKANA_URL", "https://www.workana.com/jobs?category=it-programming&language=es&publication=1d"),
		FreelancerURL:        getEnv("FREELANCER_URL", "https://www.freelancer.com.ar/search/projects?types=hourly,fixed&projectLanguages=es&projectSort=latest"),
		PriceFloor:           priceFloor,
		TelegramBotToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:       chatID,
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "joblistings"),
		RedisStreamCount:     redisStreamCount,
		RedisStreamMaxLength: redisStreamMaxLen,
		Environment:          getEnv("RADAR_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for invalid values
func (c Config) Validate() error {
	if c.CacheTTL <= 0 {
		return errors.NewConfiguration("cache TTL must be positive", nil)
	}
	if c.WatchInterval <= 0 {
		return errors.NewConfiguration("watch interval must be positive", nil)
	}
	if c.WorkanaURL == "" || c.FreelancerURL == "" {
		return errors.NewConfiguration("source URLs must not be empty", nil)
	}
	if c.PriceFloor < 0 {
		return errors.NewConfiguration("price floor must not be negative", nil)
	}
	if c.RedisStreamCount <= 0 {
		return errors.NewConfiguration("redis stream count must be positive", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
