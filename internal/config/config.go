package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is not set.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/growmap/config.yaml",
}

type Config struct {
	Port    string `koanf:"port"`
	GinMode string `koanf:"gin_mode"`

	DBDriver string `koanf:"db_driver"`
	DBPath   string `koanf:"db_path"`
	DBDSN    string `koanf:"db_dsn"`

	SessionStore  string `koanf:"session_store"`
	SessionSecret string `koanf:"session_secret"`
	RedisHost     string `koanf:"redis_host"`
	RedisPort     string `koanf:"redis_port"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	ForecastURL     string        `koanf:"forecast_url"`
	ForecastTimeout time.Duration `koanf:"forecast_timeout"`
	GeoIPURL        string        `koanf:"geoip_url"`
	GeoIPTimeout    time.Duration `koanf:"geoip_timeout"`
	FallbackLat     float64       `koanf:"fallback_lat"`
	FallbackLon     float64       `koanf:"fallback_lon"`
	FallbackCity    string        `koanf:"fallback_city"`

	CORSOrigins        []string `koanf:"cors_origins"`
	TrustedProxies     []string `koanf:"trusted_proxies"`
	LoginRatePerMinute int      `koanf:"login_rate_per_minute"`
	BcryptCost         int      `koanf:"bcrypt_cost"`
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func defaultConfig() *Config {
	return &Config{
		Port:               "8080",
		GinMode:            "debug",
		DBDriver:           "sqlite",
		DBPath:             "growmap.db",
		SessionStore:       "cookie",
		RedisHost:          "localhost",
		RedisPort:          "6379",
		LogLevel:           "info",
		LogFormat:          "json",
		ForecastURL:        "https://api.open-meteo.com/v1/forecast",
		ForecastTimeout:    10 * time.Second,
		GeoIPURL:           "http://ip-api.com/json",
		GeoIPTimeout:       3 * time.Second,
		FallbackLat:        55.7558,
		FallbackLon:        37.6173,
		FallbackCity:       "Moscow",
		CORSOrigins:        []string{},
		TrustedProxies:     []string{},
		LoginRatePerMinute: 10,
		BcryptCost:         10,
	}
}

// Load reads configuration from defaults, an optional YAML file and the
// environment (highest priority). A .env file in the working directory is
// loaded into the environment first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for _, key := range []string{"cors_origins", "trusted_proxies"} {
		if err := splitCommaList(k, key); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	case "postgres", "mysql":
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required for the %s driver", c.DBDriver)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.SessionStore {
	case "cookie", "redis":
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.SessionStore)
	}

	if c.FallbackLat < -90 || c.FallbackLat > 90 || c.FallbackLon < -180 || c.FallbackLon > 180 {
		return errors.New("fallback coordinate out of range")
	}
	if c.LoginRatePerMinute < 0 {
		return errors.New("LOGIN_RATE_PER_MINUTE cannot be negative")
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// splitCommaList turns a comma separated env value into a string slice.
func splitCommaList(k *koanf.Koanf, path string) error {
	val, ok := k.Get(path).(string)
	if !ok {
		return nil
	}

	parts := strings.Split(val, ",")
	trimmed := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			trimmed = append(trimmed, p)
		}
	}

	if err := k.Set(path, trimmed); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}
