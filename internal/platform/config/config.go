package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full process configuration, read from the environment.
type Config struct {
	Server     Server
	Redis      RedisConfig
	Database   DatabaseConfig
	Onboarding OnboardingConfig
	Kafka      KafkaConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"ONBOARD_GATEWAY_ADDR"             envDefault:":8080"`
	LogLevel        string        `env:"ONBOARD_GATEWAY_LOG_LEVEL"        envDefault:"info"`
	RequestTimeout  time.Duration `env:"ONBOARD_GATEWAY_REQUEST_TIMEOUT"  envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"ONBOARD_GATEWAY_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// RedisConfig configures the draft KV backend. An empty URL keeps drafts in memory.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE"      envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT"   envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT"   envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT"  envDefault:"3s"`
}

// DatabaseConfig configures the pending registration store. An empty URL
// keeps pending registrations in memory.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS"    envDefault:"10"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS"    envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
	EnsureSchema    bool          `env:"DATABASE_ENSURE_SCHEMA"     envDefault:"true"`
}

// OnboardingConfig holds flow-specific settings.
type OnboardingConfig struct {
	DraftTTL               time.Duration `env:"ONBOARDING_DRAFT_TTL"                envDefault:"720h"`
	PendingRegistrationTTL time.Duration `env:"ONBOARDING_PENDING_REGISTRATION_TTL" envDefault:"24h"`
	ClientCookieName       string        `env:"ONBOARDING_CLIENT_COOKIE"            envDefault:"onboarding_client"`
	SecureCookies          bool          `env:"ONBOARDING_SECURE_COOKIES"           envDefault:"true"`
	AuditBufferSize        int           `env:"ONBOARDING_AUDIT_BUFFER"             envDefault:"256"`
}

// KafkaConfig configures the audit sink. No brokers disables it.
type KafkaConfig struct {
	Brokers    []string `env:"KAFKA_BROKERS"     envSeparator:","`
	AuditTopic string   `env:"KAFKA_AUDIT_TOPIC" envDefault:"onboarding.audit"`

	// Consecutive produce failures before audit events are diverted to the
	// fallback sink, and how long to wait before probing Kafka again.
	BreakerThreshold int           `env:"KAFKA_AUDIT_BREAKER_THRESHOLD" envDefault:"5"`
	BreakerCooldown  time.Duration `env:"KAFKA_AUDIT_BREAKER_COOLDOWN"  envDefault:"30s"`

	// Upper bound on one audit produce, so an unreachable broker counts as a
	// failure instead of stalling the audit worker.
	ProduceTimeout time.Duration `env:"KAFKA_AUDIT_PRODUCE_TIMEOUT" envDefault:"5s"`
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Onboarding.PendingRegistrationTTL <= 0 {
		return fmt.Errorf("ONBOARDING_PENDING_REGISTRATION_TTL must be positive")
	}
	if c.Onboarding.ClientCookieName == "" {
		return fmt.Errorf("ONBOARDING_CLIENT_COOKIE must not be empty")
	}
	if c.Kafka.ProduceTimeout <= 0 {
		return fmt.Errorf("KAFKA_AUDIT_PRODUCE_TIMEOUT must be positive")
	}
	if c.Onboarding.AuditBufferSize < 0 {
		return fmt.Errorf("ONBOARDING_AUDIT_BUFFER must not be negative")
	}
	return nil
}
