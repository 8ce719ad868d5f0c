// Package config provides configuration management for the library server.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMySQL    = "mysql"
)

// Default configuration values.
const (
	DefaultServerPort      = 8080
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsEnabled  = true
	DefaultEnvFile         = ".env"
	DefaultStoreDriver     = StoreMemory
	DefaultMaxOpenConns    = 10
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = time.Hour
	DefaultCacheEnabled    = false
	DefaultRedisAddr       = "localhost:6379"
	DefaultRedisDB         = 0
	DefaultCacheTTL        = 5 * time.Minute
	DefaultAIEndpoint      = "https://api.openai.com/v1/chat/completions"
	DefaultAIModel         = "gpt-4"
)

// Environment variable names.
const (
	EnvServerPort      = "APP_SERVER_PORT"
	EnvLogLevel        = "APP_LOG_LEVEL"
	EnvShutdownTimeout = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled  = "APP_METRICS_ENABLED"
	EnvEnvFile         = "APP_ENV_FILE"
	EnvStoreDriver     = "APP_STORE_DRIVER"
	EnvDatabaseDSN     = "APP_DATABASE_DSN"
	EnvMaxOpenConns    = "APP_DATABASE_MAX_OPEN_CONNS"
	EnvMaxIdleConns    = "APP_DATABASE_MAX_IDLE_CONNS"
	EnvConnMaxLifetime = "APP_DATABASE_CONN_MAX_LIFETIME"
	EnvCacheEnabled    = "APP_CACHE_ENABLED"
	EnvRedisAddr       = "APP_REDIS_ADDR"
	EnvRedisPassword   = "APP_REDIS_PASSWORD" //nolint:gosec // env var name, not a credential
	EnvRedisDB         = "APP_REDIS_DB"
	EnvCacheTTL        = "APP_CACHE_TTL"
	EnvAIEndpoint      = "APP_AI_ENDPOINT"
	EnvAIModel         = "APP_AI_MODEL"
	EnvAIAPIKey        = "OPENAI_API_KEY" //nolint:gosec // env var name, not a credential
)

// Config holds the application configuration.
type Config struct {
	// Server settings.
	ServerPort      int
	LogLevel        string
	ShutdownTimeout time.Duration
	MetricsEnabled  bool

	// Record store settings.
	StoreDriver     string
	DatabaseDSN     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Redis cache settings.
	CacheEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Tagline generation settings.
	AIEndpoint string
	AIModel    string
	AIAPIKey   string
}

// Validation errors.
var (
	ErrInvalidServerPort      = errors.New("server port must be between 1 and 65535")
	ErrInvalidLogLevel        = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrInvalidStoreDriver     = errors.New("store driver must be one of: memory, postgres, mysql")
	ErrMissingDatabaseDSN     = errors.New("database DSN must be set for postgres and mysql drivers")
	ErrInvalidPoolSize        = errors.New("database pool sizes must not be negative")
	ErrMissingRedisAddr       = errors.New("redis address must be set when the cache is enabled")
	ErrInvalidRedisDB         = errors.New("redis DB must not be negative")
	ErrInvalidCacheTTL        = errors.New("cache TTL must be positive")
	ErrMissingAIEndpoint      = errors.New("AI endpoint must be set")
)

// Load reads configuration with defaults. Values come from an optional dotenv
// file (APP_ENV_FILE, default .env); real environment variables override it.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:      DefaultServerPort,
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  DefaultMetricsEnabled,
		StoreDriver:     DefaultStoreDriver,
		MaxOpenConns:    DefaultMaxOpenConns,
		MaxIdleConns:    DefaultMaxIdleConns,
		ConnMaxLifetime: DefaultConnMaxLifetime,
		CacheEnabled:    DefaultCacheEnabled,
		RedisAddr:       DefaultRedisAddr,
		RedisDB:         DefaultRedisDB,
		CacheTTL:        DefaultCacheTTL,
		AIEndpoint:      DefaultAIEndpoint,
		AIModel:         DefaultAIModel,
	}

	v, err := newViper()
	if err != nil {
		return nil, fmt.Errorf("reading env file: %w", err)
	}

	if err := cfg.loadFrom(v); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// newViper returns a viper instance bound to the environment and, when it
// exists, the dotenv file.
func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()

	envFile := v.GetString(EnvEnvFile)
	if envFile == "" {
		envFile = DefaultEnvFile
	}

	v.SetConfigFile(envFile)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("%s: %w", envFile, err)
	}

	return v, nil
}

// loadFrom loads configuration values from v.
func (c *Config) loadFrom(v *viper.Viper) error {
	if err := c.loadServer(v); err != nil {
		return err
	}

	if err := c.loadStore(v); err != nil {
		return err
	}

	if err := c.loadCache(v); err != nil {
		return err
	}

	c.loadAI(v)

	return nil
}

// loadServer loads server-related settings.
func (c *Config) loadServer(v *viper.Viper) error {
	if err := parseInt(v, EnvServerPort, &c.ServerPort); err != nil {
		return err
	}

	if val := v.GetString(EnvLogLevel); val != "" {
		c.LogLevel = val
	}

	if err := parseDuration(v, EnvShutdownTimeout, &c.ShutdownTimeout); err != nil {
		return err
	}

	return parseBool(v, EnvMetricsEnabled, &c.MetricsEnabled)
}

// loadStore loads record store settings.
func (c *Config) loadStore(v *viper.Viper) error {
	if val := v.GetString(EnvStoreDriver); val != "" {
		c.StoreDriver = val
	}

	if val := v.GetString(EnvDatabaseDSN); val != "" {
		c.DatabaseDSN = val
	}

	if err := parseInt(v, EnvMaxOpenConns, &c.MaxOpenConns); err != nil {
		return err
	}

	if err := parseInt(v, EnvMaxIdleConns, &c.MaxIdleConns); err != nil {
		return err
	}

	return parseDuration(v, EnvConnMaxLifetime, &c.ConnMaxLifetime)
}

// loadCache loads redis cache settings.
func (c *Config) loadCache(v *viper.Viper) error {
	if err := parseBool(v, EnvCacheEnabled, &c.CacheEnabled); err != nil {
		return err
	}

	if val := v.GetString(EnvRedisAddr); val != "" {
		c.RedisAddr = val
	}

	if val := v.GetString(EnvRedisPassword); val != "" {
		c.RedisPassword = val
	}

	if err := parseInt(v, EnvRedisDB, &c.RedisDB); err != nil {
		return err
	}

	return parseDuration(v, EnvCacheTTL, &c.CacheTTL)
}

// loadAI loads tagline generation settings.
func (c *Config) loadAI(v *viper.Viper) {
	if val := v.GetString(EnvAIEndpoint); val != "" {
		c.AIEndpoint = val
	}

	if val := v.GetString(EnvAIModel); val != "" {
		c.AIModel = val
	}

	if val := v.GetString(EnvAIAPIKey); val != "" {
		c.AIAPIKey = val
	}
}

func parseInt(v *viper.Viper, key string, dst *int) error {
	val := v.GetString(key)
	if val == "" {
		return nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", key, err)
	}
	*dst = n
	return nil
}

func parseBool(v *viper.Viper, key string, dst *bool) error {
	val := v.GetString(key)
	if val == "" {
		return nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", key, err)
	}
	*dst = b
	return nil
}

func parseDuration(v *viper.Viper, key string, dst *time.Duration) error {
	val := v.GetString(key)
	if val == "" {
		return nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", key, err)
	}
	*dst = d
	return nil
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if c.AIEndpoint == "" {
		return ErrMissingAIEndpoint
	}

	return nil
}

// validateServer validates server-related configuration.
func (c *Config) validateServer() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return ErrInvalidServerPort
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	return nil
}

// validateStore validates record store configuration.
func (c *Config) validateStore() error {
	switch c.StoreDriver {
	case StoreMemory:
		return nil
	case StorePostgres, StoreMySQL:
	default:
		return ErrInvalidStoreDriver
	}

	if c.DatabaseDSN == "" {
		return ErrMissingDatabaseDSN
	}

	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 {
		return ErrInvalidPoolSize
	}

	return nil
}

// validateCache validates redis cache configuration.
func (c *Config) validateCache() error {
	if !c.CacheEnabled {
		return nil
	}

	if c.RedisAddr == "" {
		return ErrMissingRedisAddr
	}

	if c.RedisDB < 0 {
		return ErrInvalidRedisDB
	}

	if c.CacheTTL <= 0 {
		return ErrInvalidCacheTTL
	}

	return nil
}

// UsesDatabase reports whether a relational store is configured.
func (c *Config) UsesDatabase() bool {
	return c.StoreDriver == StorePostgres || c.StoreDriver == StoreMySQL
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
