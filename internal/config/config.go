package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// Config holds application level configuration.
// Values come from struct defaults, then environment variables, then an optional YAML file.
type Config struct {
	AppEnv     string `env:"APP_ENV" envDefault:"development" yaml:"app_env"`
	ServerPort string `env:"SERVER_PORT" envDefault:"3001" yaml:"server_port"`

	DBDriver    string `env:"DB_DRIVER" envDefault:"sqlite" yaml:"db_driver"`
	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"file:database.sqlite?_pragma=foreign_keys(1)" yaml:"database_dsn"`
	ResetDB     bool   `env:"RESET_DB" envDefault:"false" yaml:"reset_db"`

	// Empty RedisAddr disables caching.
	RedisAddr string `env:"REDIS_ADDR" yaml:"redis_addr"`
	RedisPass string `env:"REDIS_PASSWORD" yaml:"redis_password"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0" yaml:"redis_db"`

	TokenScheme    string        `env:"TOKEN_SCHEME" envDefault:"base64" yaml:"token_scheme"`
	JWTSecret      string        `env:"JWT_SECRET" yaml:"jwt_secret"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" envDefault:"24h" yaml:"token_ttl"`
	PasswordScheme string        `env:"PASSWORD_SCHEME" envDefault:"plain" yaml:"password_scheme"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" yaml:"log_level"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json" yaml:"log_format"`

	// Comma-separated list of allowed origins.
	CORSAllowedOrigins string        `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" yaml:"cors_allowed_origins"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s" yaml:"shutdown_timeout"`
	SwaggerHost        string        `env:"SWAGGER_HOST" yaml:"swagger_host"`
}

// Load builds Config from environment and, when path is non-empty, a YAML file.
// Keys present in the file win over the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config file: %w", err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects inconsistent settings.
func (c *Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case "sqlite", "mysql", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite, mysql or postgres, got %q", c.DBDriver))
	}

	switch c.TokenScheme {
	case "base64":
		if c.IsProduction() {
			errs = append(errs, errors.New("TOKEN_SCHEME=base64 is unsigned and not allowed in production"))
		}
	case "jwt":
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required when TOKEN_SCHEME=jwt"))
		}
	default:
		errs = append(errs, fmt.Errorf("TOKEN_SCHEME must be base64 or jwt, got %q", c.TokenScheme))
	}

	switch c.PasswordScheme {
	case "plain", "bcrypt":
	default:
		errs = append(errs, fmt.Errorf("PASSWORD_SCHEME must be plain or bcrypt, got %q", c.PasswordScheme))
	}

	if c.ServerPort == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}

	return errors.Join(errs...)
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))
	for _, origin := range origins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
