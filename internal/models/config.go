package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Log      LogConfig
	Metrics  MetricsConfig
	SeedFile string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver             string
	Path               string
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	PingTimeout        time.Duration
	BusyTimeout        time.Duration
	AtomicMaxAttempts  int
	AtomicRetryBackoff time.Duration
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Address         string
	APIPrefix       string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxConnections  int
	AllowedOrigins  []string
}

// AuthConfig holds token signing settings
type AuthConfig struct {
	SecretKey string
	TokenTTL  time.Duration
	Issuer    string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Namespace string
}
