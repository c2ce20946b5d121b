package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
	Tasks    TaskConfig     `mapstructure:"tasks" validate:"required"`
}

// ServerConfig contains HTTP server and logging settings.
type ServerConfig struct {
	Port            int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat       string `mapstructure:"log_format" validate:"required,oneof=json text"`
	ShutdownSeconds int    `mapstructure:"shutdown_seconds" validate:"gte=0"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains token and credential settings. JWTSecret is the single
// process-wide signing key.
type AuthConfig struct {
	JWTSecret                string `mapstructure:"jwt_secret" validate:"required,min=64"`
	Issuer                   string `mapstructure:"issuer" validate:"required"`
	TokenLifetimeMinutes     int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost               int    `mapstructure:"bcrypt_cost" validate:"required,gte=4,lte=31"`
	ResetCodeLifetimeMinutes int    `mapstructure:"reset_code_lifetime_minutes" validate:"required,gt=0"`
}

// TokenLifetime returns the access token TTL.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}

// ResetCodeLifetime returns the password reset code TTL.
func (c AuthConfig) ResetCodeLifetime() time.Duration {
	return time.Duration(c.ResetCodeLifetimeMinutes) * time.Minute
}

// StorageConfig contains the local directories used for course content.
type StorageConfig struct {
	UploadDir       string `mapstructure:"upload_dir" validate:"required"`
	PendingVideoDir string `mapstructure:"pending_video_dir" validate:"required"`
	PublicVideoDir  string `mapstructure:"public_video_dir" validate:"required"`
}

// TaskConfig sizes the background worker pool.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize   int `mapstructure:"queue_size" validate:"gt=0"`
}
