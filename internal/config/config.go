package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Config struct {
	Port                     string `envconfig:"PORT" default:"3000"`
	AllowedOrigin            string `envconfig:"ALLOWED_ORIGIN" default:"*"`
	StoreDriver              string `envconfig:"STORE_DRIVER" default:"file"`
	DataDir                  string `envconfig:"DATA_DIR" default:"data"`
	DatabaseURL              string `envconfig:"DATABASE_URL"`
	RedisAddr                string `envconfig:"REDIS_ADDR"`
	RedisPassword            string `envconfig:"REDIS_PASSWORD"`
	RedisDB                  int    `envconfig:"REDIS_DB" default:"0"`
	AnalyticsCacheTTLSeconds int    `envconfig:"ANALYTICS_CACHE_TTL_SECONDS" default:"30"`
	PricingPolicy            string `envconfig:"PRICING_POLICY" default:"client"`
	ExportTimezone           string `envconfig:"EXPORT_TIMEZONE" default:"UTC"`
	LogLevel                 string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads an optional .env file from the working directory, then the
// process environment. Variables already set in the environment win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if cfg.AnalyticsCacheTTLSeconds < 1 {
		cfg.AnalyticsCacheTTLSeconds = 30
	}
	return cfg, nil
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) AnalyticsCacheTTL() time.Duration {
	return time.Duration(c.AnalyticsCacheTTLSeconds) * time.Second
}
