package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	API     APIConfig
	Cache   CacheConfig
	Log     LogConfig
	Profile ProfileConfig
}

type AppConfig struct {
	ClientName string
}

type APIConfig struct {
	BaseURL              string
	Timeout              time.Duration
	ReadRetries          int
	MutationRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
}

// CacheConfig carries the freshness windows per key class.
// StaleAfter is the duration before a read triggers a background refetch;
// EvictAfter is the duration of no readers before the entry is discarded.
type CacheConfig struct {
	SubscriptionsStaleAfter time.Duration
	SubscriptionsEvictAfter time.Duration
	StatsStaleAfter         time.Duration
	StatsEvictAfter         time.Duration
	CategoriesStaleAfter    time.Duration
	CategoriesEvictAfter    time.Duration
	CatalogStaleAfter       time.Duration
	CatalogEvictAfter       time.Duration
	JanitorInterval         time.Duration
	// RevalidationFailureLimit is the number of consecutive failed
	// background refetches after which a stale entry is dropped entirely.
	RevalidationFailureLimit int
}

type LogConfig struct {
	Level string
}

type ProfileConfig struct {
	DefaultCurrency string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	baseURL := os.Getenv("SUBTRACK_API_BASE_URL")
	if baseURL == "" {
		return nil, errors.New("SUBTRACK_API_BASE_URL environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ClientName: getEnv("APP_CLIENT_NAME", "subtrack-client"),
		},
		API: APIConfig{
			BaseURL:              baseURL,
			Timeout:              getDurationEnv("API_TIMEOUT_SECONDS", time.Second, 15*time.Second),
			ReadRetries:          getIntEnv("API_READ_RETRIES", 2),
			MutationRetries:      getIntEnv("API_MUTATION_RETRIES", 1),
			RetryInitialInterval: getDurationEnv("API_RETRY_INITIAL_MS", time.Millisecond, 200*time.Millisecond),
			RetryMaxInterval:     getDurationEnv("API_RETRY_MAX_MS", time.Millisecond, 2*time.Second),
		},
		Cache: CacheConfig{
			SubscriptionsStaleAfter:  getDurationEnv("CACHE_SUBSCRIPTIONS_STALE_MINUTES", time.Minute, 2*time.Minute),
			SubscriptionsEvictAfter:  getDurationEnv("CACHE_SUBSCRIPTIONS_EVICT_MINUTES", time.Minute, 10*time.Minute),
			StatsStaleAfter:          getDurationEnv("CACHE_STATS_STALE_MINUTES", time.Minute, 2*time.Minute),
			StatsEvictAfter:          getDurationEnv("CACHE_STATS_EVICT_MINUTES", time.Minute, 10*time.Minute),
			CategoriesStaleAfter:     getDurationEnv("CACHE_CATEGORIES_STALE_MINUTES", time.Minute, 30*time.Minute),
			CategoriesEvictAfter:     getDurationEnv("CACHE_CATEGORIES_EVICT_MINUTES", time.Minute, 60*time.Minute),
			CatalogStaleAfter:        getDurationEnv("CACHE_CATALOG_STALE_MINUTES", time.Minute, 15*time.Minute),
			CatalogEvictAfter:        getDurationEnv("CACHE_CATALOG_EVICT_MINUTES", time.Minute, 45*time.Minute),
			JanitorInterval:          getDurationEnv("CACHE_JANITOR_INTERVAL_MINUTES", time.Minute, time.Minute),
			RevalidationFailureLimit: getIntEnv("CACHE_REVALIDATION_FAILURE_LIMIT", 3),
		},
		Log: LogConfig{Level: getEnv("LOG_LEVEL", "info")},
		Profile: ProfileConfig{
			DefaultCurrency: getEnv("PROFILE_DEFAULT_CURRENCY", "USD"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, unit, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return time.Duration(n) * unit
		}
	}
	return defaultValue
}
