package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Redis    RedisConfig
	Payments PaymentsConfig
	App      AppConfig
}

type ServerConfig struct {
	Port   string
	APIKey string
}

type UpstreamConfig struct {
	BaseURL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PaymentsConfig struct {
	// Candidate payment-methods paths, probed in order until one answers 2xx.
	// The upstream has served this list from several paths across deployments.
	EndpointCandidates []string
	MaxRetries         int
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:   getEnv("PORT", "8080"),
			APIKey: getEnv("GATEWAY_API_KEY", ""),
		},
		Upstream: UpstreamConfig{
			BaseURL: getEnv("UPSTREAM_BASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Payments: PaymentsConfig{
			EndpointCandidates: getEnvAsList("PAYMENT_METHODS_ENDPOINTS",
				"/professional/payment-methods,/payment/methods,/customer/payment-methods"),
			MaxRetries: getEnvAsInt("PAYMENT_MAX_RETRIES", 3),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("UPSTREAM_BASE_URL is required")
	}

	if len(c.Payments.EndpointCandidates) == 0 {
		return fmt.Errorf("PAYMENT_METHODS_ENDPOINTS is required")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
