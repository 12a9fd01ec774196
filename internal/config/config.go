package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Store  StoreConfig  `mapstructure:"store"  validate:"required"`
	Remote RemoteConfig `mapstructure:"remote" validate:"required"`
	Sync   SyncConfig   `mapstructure:"sync"   validate:"required"`
	Auth   AuthConfig   `mapstructure:"auth"   validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// StoreConfig selects and configures the local record store backend.
// The sqlite driver is the embedded, offline-first default; postgres is
// available for server deployments.
type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite postgres"`
	DSN    string `mapstructure:"dsn"    validate:"required"`
}

// RemoteConfig configures the remote sync client and the connectivity probe.
type RemoteConfig struct {
	// BaseURL is the remote store's endpoint; records are pushed to
	// BaseURL/records and the probe checks BaseURL/healthz.
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// Timeout bounds a single push attempt.
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`

	// RetryMaxAttempts caps transient retries within one push. 1 disables
	// retrying.
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" validate:"required,gte=1,lte=10"`

	// RetryInitialBackoff is the first retry delay; subsequent delays grow
	// per the backoff policy.
	RetryInitialBackoff time.Duration `mapstructure:"retry_initial_backoff" validate:"required"`
}

// SyncConfig tunes the background reconciliation loop.
type SyncConfig struct {
	// ReconcileInterval is how often a scheduled reconciliation pass runs
	// while dirty records exist.
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval" validate:"required"`

	// ProbeInterval is how often connectivity is re-checked.
	ProbeInterval time.Duration `mapstructure:"probe_interval" validate:"required"`

	// WorkerCount bounds per-pass push concurrency during reconciliation.
	WorkerCount int `mapstructure:"worker_count" validate:"required,gte=1,lte=32"`
}

// AuthConfig contains the token validation settings for the API's
// authentication capability.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}
