package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. COURSEHUB_AUTH_JWT_SECRET.
const EnvPrefix = "COURSEHUB"

// Options selects optional configuration sources. Empty paths are skipped.
type Options struct {
	ConfigFile string // YAML/JSON/TOML file read by viper
	EnvFile    string // dotenv file; missing files are ignored
}

var defaults = map[string]any{
	"server.port":                      8080,
	"server.log_level":                 "info",
	"server.log_format":                "json",
	"server.shutdown_seconds":          10,
	"database.url":                     "",
	"database.max_open_conns":          10,
	"database.max_idle_conns":          5,
	"auth.jwt_secret":                  "",
	"auth.issuer":                      "localhost:8080",
	"auth.token_lifetime_minutes":      60,
	"auth.bcrypt_cost":                 10,
	"auth.reset_code_lifetime_minutes": 15,
	"storage.upload_dir":               "uploads/images",
	"storage.pending_video_dir":        "pending/video",
	"storage.public_video_dir":         "uploads/video",
	"tasks.worker_count":               2,
	"tasks.queue_size":                 100,
}

// Load reads configuration from the environment and a ./.env file when present.
func Load() (*Config, error) {
	return LoadWithOptions(Options{EnvFile: ".env"})
}

// LoadWithOptions reads configuration with precedence
// environment > config file > dotenv file > defaults, then validates it.
// The dotenv file is read into viper only; the process environment is not modified.
func LoadWithOptions(opts Options) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if opts.EnvFile != "" {
		values, err := godotenv.Read(opts.EnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read env file: %w", err)
		}
		for name, value := range values {
			if key, ok := keyForEnv(name); ok {
				v.SetDefault(key, value)
			}
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// keyForEnv maps COURSEHUB_AUTH_JWT_SECRET to auth.jwt_secret for known keys.
func keyForEnv(name string) (string, bool) {
	for key := range defaults {
		if name == EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")) {
			return key, true
		}
	}
	return "", false
}
