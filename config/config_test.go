package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Test with default values
	cfg := Load()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL)
	assert.Equal(t, 300*time.Second, cfg.WatchInterval)
	assert.Equal(t, 50, cfg.PriceFloor)
	assert.Equal(t, "", cfg.RedisAddr)
	assert.Equal(t, 1, cfg.RedisStreamCount)
	assert.Contains(t, cfg.WorkanaURL, "workana.com")
	assert.Contains(t, cfg.FreelancerURL, "freelancer.com.ar")

	// Test with environment variables
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("CACHE_DURATION_SECONDS", "30")
	os.Setenv("PRICE_FLOOR_USD", "100")
	os.Setenv("REDIS_ADDR", "redis.example.com:6379")
	os.Setenv("WORKANA_URL", "https://example.com/jobs")

	cfg = Load()
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 100, cfg.PriceFloor)
	assert.Equal(t, "redis.example.com:6379", cfg.RedisAddr)
	assert.Equal(t, "https://example.com/jobs", cfg.WorkanaURL)

	// Clean up
	os.Unsetenv("HTTP_ADDR")
	os.Unsetenv("CACHE_DURATION_SECONDS")
	os.Unsetenv("PRICE_FLOOR_USD")
	os.Unsetenv("REDIS_ADDR")
	os.Unsetenv("WORKANA_URL")
}

func TestValidate(t *testing.T) {
	cfg := Load()
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.CacheTTL = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.WorkanaURL = ""
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.PriceFloor = -1
	assert.Error(t, bad.Validate())
}
