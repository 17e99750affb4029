package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type R2 struct {
	AccountID     string
	AccessKey     string
	SecretKey     string
	BucketName    string
	PublicBaseURL string
}

type Publisher struct {
	BaseURL  string
	APIKey   string
	Timezone string
	Timeout  time.Duration
}

type Config struct {
	PostgresURI        string
	RedisURI           string
	FrontendURL        string
	ListenAddr         string
	R2                 R2
	Publisher          Publisher
	SecretKey          string
	CookieName         string
	SupportedPlatforms []string
	BothPlatforms      []string
	CalendarCacheTTL   time.Duration
	BatchConcurrency   int
	PublishConcurrency int
	ReconcileInterval  string
	ReconcileAfter     time.Duration
	QueryTimeout       time.Duration
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI: getEnv("POSTGRES_URI", ""),
		RedisURI:    getEnv("REDIS_URI", "localhost:6379"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		ListenAddr:  getEnv("LISTEN_ADDR", ":3000"),
		R2: R2{
			AccountID:     getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:     getEnv("R2_ACCESS_KEY", ""),
			SecretKey:     getEnv("R2_SECRET_KEY", ""),
			BucketName:    getEnv("R2_BUCKET_NAME", ""),
			PublicBaseURL: getEnv("R2_PUBLIC_BASE_URL", ""),
		},
		Publisher: Publisher{
			BaseURL:  getEnv("PUBLISHER_BASE_URL", "https://getlate.dev/api/v1"),
			APIKey:   getEnv("PUBLISHER_API_KEY", ""),
			Timezone: getEnv("PUBLISHER_TIMEZONE", "UTC"),
			Timeout:  getEnvDuration("PUBLISHER_TIMEOUT", 30*time.Second),
		},
		SecretKey:          getEnv("SECRET_KEY", ""),
		CookieName:         getEnv("COOKIE_NAME", "session"),
		SupportedPlatforms: getEnvList("SUPPORTED_PLATFORMS", []string{"instagram", "facebook", "linkedin", "tiktok", "twitter"}),
		BothPlatforms:      getEnvList("BOTH_PLATFORMS", []string{"instagram", "facebook"}),
		CalendarCacheTTL:   getEnvDuration("CALENDAR_CACHE_TTL", 30*time.Second),
		BatchConcurrency:   getEnvInt("BATCH_CONCURRENCY", 8),
		PublishConcurrency: getEnvInt("PUBLISH_CONCURRENCY", 10),
		ReconcileInterval:  getEnv("RECONCILE_INTERVAL", "@every 00h05m00s"),
		ReconcileAfter:     getEnvDuration("RECONCILE_AFTER", time.Minute),
		QueryTimeout:       getEnvDuration("QUERY_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// getEnvList reads a comma separated list, lower-cased and trimmed.
func getEnvList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
