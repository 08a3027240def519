package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"     validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"   validate:"required"`
	Cache     CacheConfig     `mapstructure:"cache"      validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"       validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
	Tasks     TasksConfig     `mapstructure:"tasks"      validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	LogFile                string `mapstructure:"log_file"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
	ReadTimeoutSeconds     int    `mapstructure:"read_timeout_seconds"     validate:"gt=0"`
	WriteTimeoutSeconds    int    `mapstructure:"write_timeout_seconds"    validate:"gt=0"`
}

// ShutdownTimeout is the grace period for in-flight requests on shutdown.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// Storage drivers.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig selects and tunes the persistence backend.
type DatabaseConfig struct {
	Driver                 string `mapstructure:"driver"                    validate:"required,oneof=file postgres sqlite"`
	URL                    string `mapstructure:"url"                       validate:"required_if=Driver postgres"`
	Path                   string `mapstructure:"path"`
	UsersPath              string `mapstructure:"users_path"`
	ConnectTimeoutSeconds  int    `mapstructure:"connect_timeout_seconds"   validate:"gt=0"`
	QueryTimeoutSeconds    int    `mapstructure:"query_timeout_seconds"     validate:"gt=0"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"            validate:"gt=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"            validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gt=0"`
}

// StoragePath returns the task file or database path for the file and
// sqlite drivers, falling back to a per-driver default.
func (c DatabaseConfig) StoragePath() string {
	if c.Path != "" {
		return c.Path
	}
	if c.Driver == DriverSQLite {
		return "tasks.db"
	}
	return "tasks.json"
}

// UserStoragePath returns the users file path for the file driver.
func (c DatabaseConfig) UserStoragePath() string {
	if c.UsersPath != "" {
		return c.UsersPath
	}
	return "users.json"
}

// ConnectTimeout bounds establishing a backend connection.
func (c DatabaseConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

// QueryTimeout bounds a single persistence operation.
func (c DatabaseConfig) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutSeconds) * time.Second
}

// ConnMaxLifetime is the maximum age of a pooled connection.
func (c DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMinutes) * time.Minute
}

// Cache and rate limit backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// CacheConfig controls the list-read cache.
type CacheConfig struct {
	Driver     string `mapstructure:"driver"      validate:"required,oneof=memory redis none"`
	TTLSeconds int    `mapstructure:"ttl_seconds" validate:"gt=0"`
}

// TTL is the lifetime of a cached task list.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// RedisConfig is shared by the redis cache and the redis rate limiter.
type RedisConfig struct {
	URL                string `mapstructure:"url"`
	DialTimeoutSeconds int    `mapstructure:"dial_timeout_seconds" validate:"gt=0"`
	OpTimeoutSeconds   int    `mapstructure:"op_timeout_seconds"   validate:"gt=0"`
	PoolSize           int    `mapstructure:"pool_size"            validate:"gt=0"`
}

// DialTimeout bounds connecting to redis.
func (c RedisConfig) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutSeconds) * time.Second
}

// OpTimeout bounds a single redis command.
func (c RedisConfig) OpTimeout() time.Duration {
	return time.Duration(c.OpTimeoutSeconds) * time.Second
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost           int    `mapstructure:"bcrypt_cost"            validate:"required,min=4,max=31"`
}

// TokenLifetime is the validity period of issued access tokens.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}

// RateLimitConfig controls the fixed-window request limiter.
type RateLimitConfig struct {
	Driver        string `mapstructure:"driver"         validate:"required,oneof=memory redis"`
	Requests      int    `mapstructure:"requests"       validate:"required,gt=0"`
	WindowSeconds int    `mapstructure:"window_seconds" validate:"required,gt=0"`
	Message       string `mapstructure:"message"        validate:"required"`
}

// Window is the fixed window length.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// TasksConfig holds task domain settings.
type TasksConfig struct {
	Statuses []string `mapstructure:"statuses" validate:"required,min=1,dive,required"`
}

// UsesRedis reports whether any component is configured to use redis.
func (c *Config) UsesRedis() bool {
	return c.Cache.Driver == BackendRedis || c.RateLimit.Driver == BackendRedis
}
