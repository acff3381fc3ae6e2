package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// EnvProduction enables strict checks on secrets.
const EnvProduction = "production"

// Config is the typed view of config.yaml plus CLUBHOUSE_* overrides.
type Config struct {
	Env      string
	LogLevel string
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Redis    RedisConfig
	CSRFKey  []byte
	Email    EmailConfig
	Seed     SeedConfig
}

// ServerConfig controls the HTTP listener and admission.
type ServerConfig struct {
	Addr               string
	MaxInFlight        int
	AdmissionWait      time.Duration
	RateLimitPerSecond float64
}

// DatabaseConfig controls the SQLite pool.
type DatabaseConfig struct {
	Path         string
	MaxOpenConns int
	SlowQuery    time.Duration
}

// SessionConfig selects the session backend and cookie signing key.
type SessionConfig struct {
	Backend string
	HashKey []byte
}

// RedisConfig is used when Session.Backend is redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// EmailConfig configures event announcement delivery.
type EmailConfig struct {
	ResendKey string
	From      string
	ReplyTo   string
}

// SeedConfig carries the credentials of the demo accounts created on an empty database.
type SeedConfig struct {
	AdminEmail      string
	AdminPassword   string
	StudentPassword string
	// DemoData adds the sample students, clubs and event; false seeds only the admin.
	DemoData bool
}

// IsProduction reports whether the app runs with production settings.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Client builds a go-redis client for these settings.
func (r RedisConfig) Client() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     r.Addr,
		Password: r.Password,
		DB:       r.DB,
	})
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_in_flight", 64)
	v.SetDefault("server.admission_wait", "2s")
	v.SetDefault("server.rate_limit_per_second", 10.0)
	v.SetDefault("database.path", "clubhouse.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.slow_query_ms", 50)
	v.SetDefault("session.backend", SessionBackendMemory)
	v.SetDefault("session.hash_key", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("csrf.key", "")
	v.SetDefault("email.resend_key", "")
	v.SetDefault("email.from", "College Clubs <noreply@college.edu>")
	v.SetDefault("email.reply_to", "clubs@college.edu")
	v.SetDefault("seed.admin_email", "admin@college.edu")
	v.SetDefault("seed.admin_password", "admin123")
	v.SetDefault("seed.student_password", "student123")
	v.SetDefault("seed.demo_data", true)
}

// Load reads configuration from dir/config.yaml (optional) and the environment.
// PRE: none
// POST: Returns a validated Config; secrets are required in production
func Load(dir string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix("CLUBHOUSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		Env:      v.GetString("env"),
		LogLevel: v.GetString("log.level"),
		Server: ServerConfig{
			Addr:               v.GetString("server.addr"),
			MaxInFlight:        v.GetInt("server.max_in_flight"),
			AdmissionWait:      v.GetDuration("server.admission_wait"),
			RateLimitPerSecond: v.GetFloat64("server.rate_limit_per_second"),
		},
		Database: DatabaseConfig{
			Path:         v.GetString("database.path"),
			MaxOpenConns: v.GetInt("database.max_open_conns"),
			SlowQuery:    time.Duration(v.GetInt("database.slow_query_ms")) * time.Millisecond,
		},
		Session: SessionConfig{
			Backend: strings.ToLower(v.GetString("session.backend")),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Email: EmailConfig{
			ResendKey: v.GetString("email.resend_key"),
			From:      v.GetString("email.from"),
			ReplyTo:   v.GetString("email.reply_to"),
		},
		Seed: SeedConfig{
			AdminEmail:      v.GetString("seed.admin_email"),
			AdminPassword:   v.GetString("seed.admin_password"),
			StudentPassword: v.GetString("seed.student_password"),
			DemoData:        v.GetBool("seed.demo_data"),
		},
	}

	var err error
	if cfg.Session.HashKey, err = decodeKey("session.hash_key", v.GetString("session.hash_key")); err != nil {
		return Config{}, err
	}
	if cfg.CSRFKey, err = decodeKey("csrf.key", v.GetString("csrf.key")); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("session.backend must be %q or %q, got %q", SessionBackendMemory, SessionBackendRedis, c.Session.Backend)
	}
	if c.Server.MaxInFlight <= 0 {
		return errors.New("server.max_in_flight must be positive")
	}
	if c.Database.MaxOpenConns <= 0 {
		return errors.New("database.max_open_conns must be positive")
	}
	if c.CSRFKey != nil && len(c.CSRFKey) != 32 {
		return fmt.Errorf("csrf.key must decode to 32 bytes, got %d", len(c.CSRFKey))
	}
	if c.IsProduction() {
		if c.CSRFKey == nil {
			return errors.New("csrf.key is required in production")
		}
		if c.Session.HashKey == nil {
			return errors.New("session.hash_key is required in production")
		}
	}
	return nil
}

// decodeKey decodes a hex secret; blank means "generate at startup".
func decodeKey(name, s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%s must be hex: %w", name, err)
	}
	return b, nil
}
