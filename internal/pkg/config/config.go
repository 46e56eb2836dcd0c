package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const devSecretKey = "dev-secret-key-change-in-production"

const (
	SessionStoreDB    = "db"
	SessionStoreRedis = "redis"
)

type Config struct {
	Port        string `env:"PORT,      default=8080"`
	Env         string `env:"ENV,       default=production"`
	LogLevel    string `env:"LOG_LEVEL, default=info"`
	SecretKey   string `env:"SECRET_KEY"`
	DatabaseURL string `env:"DATABASE_URL, default=sqlite://expense_tracker.db"`
	PageSizeMax int    `env:"PAGE_SIZE_MAX, default=100"`

	// InsecureSecret is set when SecretKey is the built-in development key.
	InsecureSecret bool

	Session SessionConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type SessionConfig struct {
	Store        string        `env:"SESSION_STORE, default=db"`
	TTL          time.Duration `env:"SESSION_TTL,   default=24h"`
	RememberTTL  time.Duration `env:"REMEMBER_TTL,  default=720h"`
	SecureCookie bool          `env:"SECURE_COOKIE, default=false"`
}

// MongoConfig is optional: an empty URI disables the MongoDB activity log.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=expense_tracker"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		if !c.IsDevelopment() {
			return errors.New("SECRET_KEY is required outside development")
		}
		c.SecretKey = devSecretKey
		c.InsecureSecret = true
	}
	switch c.Session.Store {
	case SessionStoreDB, SessionStoreRedis:
	default:
		return fmt.Errorf("SESSION_STORE must be %q or %q, got %q", SessionStoreDB, SessionStoreRedis, c.Session.Store)
	}
	if c.PageSizeMax <= 0 {
		return fmt.Errorf("PAGE_SIZE_MAX must be positive, got %d", c.PageSizeMax)
	}
	return nil
}

// Load reads an optional .env file, then the environment.
func Load() *Config {
	_ = godotenv.Load()
	cfg, err := load(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
