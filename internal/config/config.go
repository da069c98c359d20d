package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Server   ServerConfig   `yaml:"server"`
	Cache    CacheConfig    `yaml:"cache"`
	Database DatabaseConfig `yaml:"database"`
}

// LoadConfig reads the yaml config file and layers environment overrides on
// top. A missing file is not an error: every subsystem is optional and the
// service degrades rather than refusing to start.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/entitlement.yaml"
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        "entitlement",
			Environment: "development",
		},
		Server: ServerConfig{
			HTTP: HTTPConfig{Host: "0.0.0.0", Port: 8080},
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Service.StripeSecretKey, "STRIPE_SECRET_KEY")
	setString(&cfg.Service.StripeWebhookSecret, "STRIPE_WEBHOOK_SECRET")
	setString(&cfg.Service.InternalJWTSecret, "INTERNAL_JWT_SECRET")
	setString(&cfg.Service.ClientURL, "CLIENT_URL")
	setString(&cfg.Service.Environment, "APP_ENV")

	setString(&cfg.Cache.Addr, "REDIS_ADDR")
	setString(&cfg.Cache.Password, "REDIS_PASSWORD")
	setInt(&cfg.Cache.DB, "REDIS_DB")

	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")

	setInt(&cfg.Server.HTTP.Port, "HTTP_PORT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
