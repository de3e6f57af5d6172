package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains runtime configuration values.
type Config struct {
	Environment       string
	HTTPPort          string
	AppID             string
	ClientSecret      string
	RedirectURI       string
	DatabaseURL       string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	APIBaseURL        string
	AuthBaseURL       string
	RefreshSkew       time.Duration
	OutboundTimeout   time.Duration
	ProcessedOrderTTL time.Duration
	ServiceName       string
	TelemetryEndpoint string
	TelemetryInsecure bool
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	appID := strings.TrimSpace(os.Getenv("ML_APP_ID"))
	if appID == "" {
		return Config{}, fmt.Errorf("ML_APP_ID is required")
	}
	clientSecret := strings.TrimSpace(os.Getenv("ML_CLIENT_SECRET"))
	if clientSecret == "" {
		return Config{}, fmt.Errorf("ML_CLIENT_SECRET is required")
	}
	redirectURI := strings.TrimSpace(os.Getenv("ML_REDIRECT_URI"))
	if redirectURI == "" {
		return Config{}, fmt.Errorf("ML_REDIRECT_URI is required")
	}

	cfg := Config{
		Environment:       getEnv("APP_ENV", "development"),
		HTTPPort:          getEnv("HTTP_PORT", "3000"),
		AppID:             appID,
		ClientSecret:      clientSecret,
		RedirectURI:       redirectURI,
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getInt("REDIS_DB", 0),
		APIBaseURL:        getEnv("ML_API_BASE_URL", "https://api.mercadolibre.com"),
		AuthBaseURL:       getEnv("ML_AUTH_BASE_URL", "https://auth.mercadolivre.com.br"),
		RefreshSkew:       getDuration("TOKEN_REFRESH_SKEW", 30*time.Minute),
		OutboundTimeout:   getDuration("OUTBOUND_TIMEOUT", 10*time.Second),
		ProcessedOrderTTL: getDuration("PROCESSED_ORDER_TTL", 7*24*time.Hour),
		ServiceName:       getEnv("SERVICE_NAME", "roboentrega"),
		TelemetryEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TelemetryInsecure: getBool("OTEL_EXPORTER_OTLP_INSECURE", true),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(v) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}
