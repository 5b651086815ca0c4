// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const EnvProduction = "production"

// Config is the full server configuration.
type Config struct {
	Port        string `env:"PORT" envDefault:":5000"`
	Environment string `env:"APP_ENV" envDefault:"development"`

	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogstashAddr string `env:"LOGSTASH_ADDR"`

	SessionSecret          string        `env:"SECRET_KEY"`
	SessionMaxAge          time.Duration `env:"SESSION_MAX_AGE" envDefault:"24h"`
	SessionCleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"10m"`

	Provider ProviderConfig

	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	StaticDir   string   `env:"STATIC_DIR"`

	DB DBConfig
}

// ProviderConfig configures the outbound recipe API.
type ProviderConfig struct {
	APIKey   string        `env:"API_KEY"`
	BaseURL  string        `env:"RECIPE_API_URL" envDefault:"https://api.spoonacular.com"`
	Timeout  time.Duration `env:"RECIPE_API_TIMEOUT" envDefault:"15s"`
	PageSize int           `env:"SEARCH_PAGE_SIZE" envDefault:"10"`
}

// DBConfig selects postgres when Host is set and sqlite otherwise.
type DBConfig struct {
	Host       string `env:"DB_HOST"`
	Port       string `env:"DB_PORT" envDefault:"5432"`
	User       string `env:"DB_USER"`
	Password   string `env:"DB_PASSWORD"`
	Name       string `env:"DB_NAME"`
	SSLMode    string `env:"DB_SSLMODE" envDefault:"require"`
	SQLitePath string `env:"DATABASE" envDefault:"recipebox.db"`
}

// Load reads an optional .env file and then parses the environment.
func Load(dotenvFiles ...string) (Config, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive, got %s", c.SessionMaxAge)
	}
	if c.SessionCleanupInterval <= 0 {
		return fmt.Errorf("SESSION_CLEANUP_INTERVAL must be positive, got %s", c.SessionCleanupInterval)
	}
	if c.Provider.PageSize <= 0 {
		return fmt.Errorf("SEARCH_PAGE_SIZE must be positive, got %d", c.Provider.PageSize)
	}
	if c.DB.Host == "" && c.DB.SQLitePath == "" {
		return errors.New("either DB_HOST or DATABASE must be set")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// UsesPostgres reports whether a remote postgres database is configured.
func (d DBConfig) UsesPostgres() bool {
	return d.Host != ""
}

// DSN returns the postgres connection string.
func (d DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}
