// Package config loads the storefront configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks for the configuration file.
const DefaultPath = "config/storefront.yaml"

// Config is the top-level service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Mailer   MailerConfig   `yaml:"mailer"`
	Reports  ReportsConfig  `yaml:"reports"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	RatePerSecond   int      `yaml:"rate_per_second"`
	RateBurst       int      `yaml:"rate_burst"`
	AuditLogPath    string   `yaml:"audit_log_path"`
	ShutdownTimeout int      `yaml:"shutdown_timeout_seconds"`
}

// DatabaseConfig controls the relational store. An empty DSN selects the
// in-memory store.
type DatabaseConfig struct {
	Driver          string `yaml:"driver"`
	DSN             string `yaml:"dsn"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_seconds"`
}

// RedisConfig controls the session cart store. An empty Addr selects the
// in-memory cart store.
type RedisConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	CartTTLHrs int    `yaml:"cart_ttl_hours"`
}

// AuthConfig controls token issuing and validation.
type AuthConfig struct {
	JWTSecret   string `yaml:"jwt_secret"`
	TokenTTLHrs int    `yaml:"token_ttl_hours"`
}

// MailerConfig controls the transactional email provider.
type MailerConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	From     string `yaml:"from"`
}

// ReportsConfig controls the daily order report.
type ReportsConfig struct {
	Schedule string `yaml:"schedule"`
	AdminTo  string `yaml:"admin_to"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads the configuration from DefaultPath, falling back to defaults
// when the file is missing, then applies environment overrides.
func Load() (*Config, error) {
	return LoadFromPath(DefaultPath)
}

// LoadFromPath reads the configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(cfg)

	if cfg.Server.Port <= 0 {
		return nil, fmt.Errorf("server port must be positive")
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			AllowedOrigins:  []string{"*"},
			RatePerSecond:   25,
			RateBurst:       50,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Driver:       "postgres",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Redis: RedisConfig{
			CartTTLHrs: 72,
		},
		Auth: AuthConfig{
			TokenTTLHrs: 24,
		},
		Reports: ReportsConfig{
			Schedule: "0 7 * * *",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Host, "STOREFRONT_HOST")
	setInt(&cfg.Server.Port, "STOREFRONT_PORT")
	if v := os.Getenv("STOREFRONT_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitAndTrim(v)
	}
	setString(&cfg.Server.AuditLogPath, "STOREFRONT_AUDIT_LOG")

	setString(&cfg.Database.Driver, "STOREFRONT_DB_DRIVER")
	setString(&cfg.Database.DSN, "STOREFRONT_DB_DSN")

	setString(&cfg.Redis.Addr, "STOREFRONT_REDIS_ADDR")
	setString(&cfg.Redis.Password, "STOREFRONT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "STOREFRONT_REDIS_DB")

	setString(&cfg.Auth.JWTSecret, "STOREFRONT_JWT_SECRET")
	setInt(&cfg.Auth.TokenTTLHrs, "STOREFRONT_TOKEN_TTL_HOURS")

	setString(&cfg.Mailer.Endpoint, "STOREFRONT_MAILER_ENDPOINT")
	setString(&cfg.Mailer.APIKey, "STOREFRONT_MAILER_KEY")
	setString(&cfg.Mailer.From, "STOREFRONT_MAILER_FROM")

	setString(&cfg.Reports.Schedule, "STOREFRONT_REPORT_SCHEDULE")
	setString(&cfg.Reports.AdminTo, "STOREFRONT_REPORT_TO")

	setString(&cfg.Logging.Level, "STOREFRONT_LOG_LEVEL")
	setString(&cfg.Logging.Format, "STOREFRONT_LOG_FORMAT")
	setString(&cfg.Logging.Output, "STOREFRONT_LOG_OUTPUT")
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

func splitAndTrim(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
