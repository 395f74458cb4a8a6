package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string
	LogFile  string

	DB      DBConfig
	Auth    AuthConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Pricing PricingConfig
}

// DBConfig selects the SQL driver. DSN is a file path or ":memory:" for
// sqlite and a postgres:// URL for postgres.
type DBConfig struct {
	Driver string
	DSN    string
	Seed   bool
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// RedisConfig is optional; an empty Addr keeps the catalog snapshot in memory.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	SnapshotTTL time.Duration
}

// KafkaConfig is optional; no brokers means ledger events are dropped.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type PricingConfig struct {
	FinalConsumerMarkup    decimal.Decimal
	WholesaleDefaultMarkup decimal.Decimal
	LowStockThreshold      int
}

// DefaultPricing mirrors the values used when nothing is configured.
func DefaultPricing() PricingConfig {
	return PricingConfig{
		FinalConsumerMarkup:    decimal.NewFromInt(40),
		WholesaleDefaultMarkup: decimal.NewFromInt(20),
		LowStockThreshold:      5,
	}
}

// Load reads configuration from the environment, loading a .env file first
// when one exists in the working directory.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", ""),
		LogFile:  getEnv("LOG_FILE", ""),
	}

	cfg.DB = DBConfig{
		Driver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DSN:    getEnv("DB_DSN", "shopvision.db"),
		Seed:   getEnvBool("SEED_DEMO", cfg.Env != "production"),
	}
	if cfg.DB.Driver != "sqlite" && cfg.DB.Driver != "postgres" {
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q (want sqlite or postgres)", cfg.DB.Driver)
	}

	var err error
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", "")
	if cfg.Auth.TokenTTL, err = parseDurationEnv("JWT_TTL", "24h"); err != nil {
		return Config{}, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		if cfg.Env == "production" {
			return Config{}, errors.New("JWT_SECRET must be set in production")
		}
		cfg.Auth.JWTSecret = "dev-only-secret"
	}

	cfg.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}
	if cfg.Redis.SnapshotTTL, err = parseDurationEnv("SNAPSHOT_TTL", "0s"); err != nil {
		return Config{}, fmt.Errorf("invalid SNAPSHOT_TTL: %w", err)
	}

	cfg.Kafka = KafkaConfig{
		Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
		Topic:   getEnv("KAFKA_TOPIC", "shopvision.ledger"),
	}

	def := DefaultPricing()
	cfg.Pricing = PricingConfig{
		FinalConsumerMarkup:    getEnvDecimal("FINAL_CONSUMER_MARKUP", def.FinalConsumerMarkup),
		WholesaleDefaultMarkup: getEnvDecimal("WHOLESALE_DEFAULT_MARKUP", def.WholesaleDefaultMarkup),
		LowStockThreshold:      getEnvInt("LOW_STOCK_THRESHOLD", def.LowStockThreshold),
	}
	if cfg.Pricing.LowStockThreshold < 0 {
		cfg.Pricing.LowStockThreshold = def.LowStockThreshold
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// getEnvDecimal falls back to def for empty, malformed or negative values.
func getEnvDecimal(key string, def decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil || d.IsNegative() {
		return def
	}
	return d
}

func parseDurationEnv(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, def))
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
