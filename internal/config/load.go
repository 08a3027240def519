package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// TASKS_AUTH_JWT_SECRET for auth.jwt_secret.
const EnvPrefix = "TASKS"

var defaults = map[string]any{
	"server.port":                     3000,
	"server.log_level":                "info",
	"server.log_file":                 "",
	"server.shutdown_timeout_seconds": 10,
	"server.read_timeout_seconds":     15,
	"server.write_timeout_seconds":    15,

	"database.driver":                    DriverFile,
	"database.url":                       "",
	"database.path":                      "",
	"database.users_path":                "",
	"database.connect_timeout_seconds":   5,
	"database.query_timeout_seconds":     5,
	"database.max_open_conns":            10,
	"database.max_idle_conns":            5,
	"database.conn_max_lifetime_minutes": 5,

	"cache.driver":      BackendMemory,
	"cache.ttl_seconds": 60,

	"redis.url":                  "",
	"redis.dial_timeout_seconds": 2,
	"redis.op_timeout_seconds":   1,
	"redis.pool_size":            10,

	"auth.jwt_secret":             "",
	"auth.token_lifetime_minutes": 60,
	"auth.bcrypt_cost":            10,

	"rate_limit.driver":         BackendMemory,
	"rate_limit.requests":       60,
	"rate_limit.window_seconds": 60,
	"rate_limit.message":        "Too many requests, please try again later.",

	"tasks.statuses": []string{"pending", "in_progress", "done"},
}

// Load configuration from environment variables and optionally a
// config.yaml in the working directory. Environment variables take
// precedence over values from the config file.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and cross-section rules.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if cfg.UsesRedis() && cfg.Redis.URL == "" {
		return fmt.Errorf("config validation failed: redis.url is required when cache or rate_limit uses redis")
	}
	return nil
}
