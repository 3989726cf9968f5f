package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port             string `env:"PORT"`
	LogLevel         string `env:"LOG_LEVEL"`
	ServerName       string `env:"SERVER_NAME"`
	DatabaseURL      string `env:"DATABASE_URL,secret"`
	RedisURL         string `env:"REDIS_URL,secret"`
	JWTPrivateKey    string `env:"JWT_PRIVATE_KEY,secret"`
	JWTPublicKey     string `env:"JWT_PUBLIC_KEY,secret"`
	RateLimitBurst   int64
	RateLimitRate    float64
	FlushInterval    time.Duration
	ClickRetention   time.Duration
	LinkCheckTimeout time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		ServerName:       getEnv("SERVER_NAME", ""),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		JWTPrivateKey:    getEnv("JWT_PRIVATE_KEY", ""),
		JWTPublicKey:     getEnv("JWT_PUBLIC_KEY", ""),
		RateLimitBurst:   getEnvInt("RATE_LIMIT_BURST", 5),
		RateLimitRate:    float64(getEnvInt("RATE_LIMIT_PER_MINUTE", 60)) / 60.0,
		FlushInterval:    getEnvDuration("ANALYTICS_FLUSH_INTERVAL", 10*time.Second),
		ClickRetention:   getEnvDuration("CLICK_RETENTION", 90*24*time.Hour),
		LinkCheckTimeout: getEnvDuration("LINK_CHECK_TIMEOUT", 5*time.Second),
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
