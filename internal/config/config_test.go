package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultValues(t *testing.T) {
	// Arrange
	clearEnvVars(t)

	// Act
	cfg, err := Load()

	// Assert
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.ServerPort != DefaultServerPort {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, DefaultServerPort)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %s, want %s", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("ShutdownTimeout = %v, want %v", cfg.ShutdownTimeout, DefaultShutdownTimeout)
	}
	if cfg.MetricsEnabled != DefaultMetricsEnabled {
		t.Errorf("MetricsEnabled = %v, want %v", cfg.MetricsEnabled, DefaultMetricsEnabled)
	}
	if cfg.StoreDriver != StoreMemory {
		t.Errorf("StoreDriver = %s, want %s", cfg.StoreDriver, StoreMemory)
	}
	if cfg.UsesDatabase() {
		t.Error("UsesDatabase() = true, want false for memory store")
	}
	if cfg.CacheEnabled {
		t.Error("CacheEnabled = true, want false")
	}
	if cfg.CacheTTL != DefaultCacheTTL {
		t.Errorf("CacheTTL = %v, want %v", cfg.CacheTTL, DefaultCacheTTL)
	}
	if cfg.AIEndpoint != DefaultAIEndpoint {
		t.Errorf("AIEndpoint = %s, want %s", cfg.AIEndpoint, DefaultAIEndpoint)
	}
	if cfg.AIModel != DefaultAIModel {
		t.Errorf("AIModel = %s, want %s", cfg.AIModel, DefaultAIModel)
	}
	if cfg.AIAPIKey != "" {
		t.Errorf("AIAPIKey = %q, want empty string", cfg.AIAPIKey)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(*testing.T, *Config)
	}{
		{
			name: "custom server settings",
			envVars: map[string]string{
				EnvServerPort:      "3000",
				EnvLogLevel:        "warn",
				EnvShutdownTimeout: "45s",
				EnvMetricsEnabled:  "false",
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.ServerPort != 3000 {
					t.Errorf("ServerPort = %d, want 3000", cfg.ServerPort)
				}
				if cfg.LogLevel != "warn" {
					t.Errorf("LogLevel = %s, want warn", cfg.LogLevel)
				}
				if cfg.ShutdownTimeout != 45*time.Second {
					t.Errorf("ShutdownTimeout = %v, want 45s", cfg.ShutdownTimeout)
				}
				if cfg.MetricsEnabled {
					t.Error("MetricsEnabled = true, want false")
				}
			},
		},
		{
			name: "postgres store",
			envVars: map[string]string{
				EnvStoreDriver:     StorePostgres,
				EnvDatabaseDSN:     "host=db user=library dbname=library",
				EnvMaxOpenConns:    "20",
				EnvMaxIdleConns:    "2",
				EnvConnMaxLifetime: "10m",
			},
			validate: func(t *testing.T, cfg *Config) {
				if !cfg.UsesDatabase() {
					t.Error("UsesDatabase() = false, want true")
				}
				if cfg.DatabaseDSN != "host=db user=library dbname=library" {
					t.Errorf("DatabaseDSN = %s", cfg.DatabaseDSN)
				}
				if cfg.MaxOpenConns != 20 || cfg.MaxIdleConns != 2 {
					t.Errorf("pool = %d/%d, want 20/2", cfg.MaxOpenConns, cfg.MaxIdleConns)
				}
				if cfg.ConnMaxLifetime != 10*time.Minute {
					t.Errorf("ConnMaxLifetime = %v, want 10m", cfg.ConnMaxLifetime)
				}
			},
		},
		{
			name: "redis cache",
			envVars: map[string]string{
				EnvCacheEnabled:  "true",
				EnvRedisAddr:     "redis:6379",
				EnvRedisPassword: "secret",
				EnvRedisDB:       "3",
				EnvCacheTTL:      "30s",
			},
			validate: func(t *testing.T, cfg *Config) {
				if !cfg.CacheEnabled {
					t.Error("CacheEnabled = false, want true")
				}
				if cfg.RedisAddr != "redis:6379" || cfg.RedisPassword != "secret" || cfg.RedisDB != 3 {
					t.Errorf("redis = %s/%s/%d", cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
				}
				if cfg.CacheTTL != 30*time.Second {
					t.Errorf("CacheTTL = %v, want 30s", cfg.CacheTTL)
				}
			},
		},
		{
			name: "tagline generation",
			envVars: map[string]string{
				EnvAIEndpoint: "http://localhost:11434/v1/chat/completions",
				EnvAIModel:    "llama3",
				EnvAIAPIKey:   "sk-test",
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.AIEndpoint != "http://localhost:11434/v1/chat/completions" {
					t.Errorf("AIEndpoint = %s", cfg.AIEndpoint)
				}
				if cfg.AIModel != "llama3" {
					t.Errorf("AIModel = %s, want llama3", cfg.AIModel)
				}
				if cfg.AIAPIKey != "sk-test" {
					t.Errorf("AIAPIKey = %s, want sk-test", cfg.AIAPIKey)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			clearEnvVars(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			// Act
			cfg, err := Load()

			// Assert
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			tt.validate(t, cfg)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	// Arrange
	clearEnvVars(t)
	path := writeEnvFile(t, "OPENAI_API_KEY=sk-from-file\nAPP_SERVER_PORT=9000\nAPP_LOG_LEVEL=debug\n")
	t.Setenv(EnvEnvFile, path)

	// Act
	cfg, err := Load()

	// Assert
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.AIAPIKey != "sk-from-file" {
		t.Errorf("AIAPIKey = %s, want sk-from-file", cfg.AIAPIKey)
	}
	if cfg.ServerPort != 9000 {
		t.Errorf("ServerPort = %d, want 9000", cfg.ServerPort)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
}

func TestLoad_EnvironmentOverridesEnvFile(t *testing.T) {
	// Arrange
	clearEnvVars(t)
	path := writeEnvFile(t, "OPENAI_API_KEY=sk-from-file\nAPP_SERVER_PORT=9000\n")
	t.Setenv(EnvEnvFile, path)
	t.Setenv(EnvAIAPIKey, "sk-from-env")

	// Act
	cfg, err := Load()

	// Assert
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.AIAPIKey != "sk-from-env" {
		t.Errorf("AIAPIKey = %s, want sk-from-env", cfg.AIAPIKey)
	}
	if cfg.ServerPort != 9000 {
		t.Errorf("ServerPort = %d, want 9000", cfg.ServerPort)
	}
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	// Arrange
	clearEnvVars(t)
	t.Setenv(EnvEnvFile, filepath.Join(t.TempDir(), "does-not-exist.env"))

	// Act
	cfg, err := Load()

	// Assert
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.ServerPort != DefaultServerPort {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, DefaultServerPort)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr error
	}{
		{
			name:    "invalid server port - zero",
			envVars: map[string]string{EnvServerPort: "0"},
			wantErr: ErrInvalidServerPort,
		},
		{
			name:    "invalid server port - too high",
			envVars: map[string]string{EnvServerPort: "65536"},
			wantErr: ErrInvalidServerPort,
		},
		{
			name:    "invalid log level",
			envVars: map[string]string{EnvLogLevel: "invalid"},
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:    "invalid shutdown timeout - zero",
			envVars: map[string]string{EnvShutdownTimeout: "0s"},
			wantErr: ErrInvalidShutdownTimeout,
		},
		{
			name:    "unknown store driver",
			envVars: map[string]string{EnvStoreDriver: "sqlite"},
			wantErr: ErrInvalidStoreDriver,
		},
		{
			name:    "database driver without dsn",
			envVars: map[string]string{EnvStoreDriver: StoreMySQL},
			wantErr: ErrMissingDatabaseDSN,
		},
		{
			name: "negative pool size",
			envVars: map[string]string{
				EnvStoreDriver:  StorePostgres,
				EnvDatabaseDSN:  "host=db",
				EnvMaxOpenConns: "-1",
			},
			wantErr: ErrInvalidPoolSize,
		},
		{
			name: "negative redis db",
			envVars: map[string]string{
				EnvCacheEnabled: "true",
				EnvRedisDB:      "-1",
			},
			wantErr: ErrInvalidRedisDB,
		},
		{
			name: "zero cache ttl",
			envVars: map[string]string{
				EnvCacheEnabled: "true",
				EnvCacheTTL:     "0s",
			},
			wantErr: ErrInvalidCacheTTL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			clearEnvVars(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			// Act
			cfg, err := Load()

			// Assert
			if err == nil {
				t.Fatalf("Load() expected error, got nil")
			}
			if cfg != nil {
				t.Errorf("Load() expected nil config on error, got %+v", cfg)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_ParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
	}{
		{name: "server port not a number", envVars: map[string]string{EnvServerPort: "abc"}},
		{name: "shutdown timeout bad format", envVars: map[string]string{EnvShutdownTimeout: "invalid"}},
		{name: "metrics enabled not a bool", envVars: map[string]string{EnvMetricsEnabled: "notabool"}},
		{name: "max open conns not a number", envVars: map[string]string{EnvMaxOpenConns: "ten"}},
		{name: "conn max lifetime bad format", envVars: map[string]string{EnvConnMaxLifetime: "forever"}},
		{name: "cache enabled not a bool", envVars: map[string]string{EnvCacheEnabled: "maybe"}},
		{name: "redis db not a number", envVars: map[string]string{EnvRedisDB: "zero"}},
		{name: "cache ttl bad format", envVars: map[string]string{EnvCacheTTL: "5 minutes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			clearEnvVars(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			// Act
			cfg, err := Load()

			// Assert
			if err == nil {
				t.Fatalf("Load() expected error, got nil")
			}
			if cfg != nil {
				t.Errorf("Load() expected nil config on error, got %+v", cfg)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "valid config", modify: func(*Config) {}},
		{name: "minimum port", modify: func(c *Config) { c.ServerPort = 1 }},
		{name: "maximum port", modify: func(c *Config) { c.ServerPort = 65535 }},
		{
			name:    "empty log level",
			modify:  func(c *Config) { c.LogLevel = "" },
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:    "negative shutdown timeout",
			modify:  func(c *Config) { c.ShutdownTimeout = -time.Second },
			wantErr: ErrInvalidShutdownTimeout,
		},
		{
			name:    "empty store driver",
			modify:  func(c *Config) { c.StoreDriver = "" },
			wantErr: ErrInvalidStoreDriver,
		},
		{
			name: "mysql with dsn",
			modify: func(c *Config) {
				c.StoreDriver = StoreMySQL
				c.DatabaseDSN = "user:pass@tcp(db:3306)/library?parseTime=true"
			},
		},
		{
			name: "cache enabled without address",
			modify: func(c *Config) {
				c.CacheEnabled = true
				c.RedisAddr = ""
			},
			wantErr: ErrMissingRedisAddr,
		},
		{
			name: "cache disabled ignores redis settings",
			modify: func(c *Config) {
				c.RedisAddr = ""
				c.CacheTTL = 0
			},
		},
		{
			name:    "empty AI endpoint",
			modify:  func(c *Config) { c.AIEndpoint = "" },
			wantErr: ErrMissingAIEndpoint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			cfg := validConfig()
			tt.modify(&cfg)

			// Act
			err := cfg.Validate()

			// Assert
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Address(t *testing.T) {
	tests := []struct {
		port int
		want string
	}{
		{port: 8080, want: ":8080"},
		{port: 1, want: ":1"},
		{port: 65535, want: ":65535"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			cfg := &Config{ServerPort: tt.port}
			if got := cfg.Address(); got != tt.want {
				t.Errorf("Address() = %s, want %s", got, tt.want)
			}
		})
	}
}

func validConfig() Config {
	return Config{
		ServerPort:      DefaultServerPort,
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  true,
		StoreDriver:     StoreMemory,
		MaxOpenConns:    DefaultMaxOpenConns,
		MaxIdleConns:    DefaultMaxIdleConns,
		ConnMaxLifetime: DefaultConnMaxLifetime,
		RedisAddr:       DefaultRedisAddr,
		CacheTTL:        DefaultCacheTTL,
		AIEndpoint:      DefaultAIEndpoint,
		AIModel:         DefaultAIModel,
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	return path
}

// clearEnvVars blanks every configuration variable for the duration of the
// test and points the env file at a path that does not exist.
func clearEnvVars(t *testing.T) {
	t.Helper()
	envVars := []string{
		EnvServerPort,
		EnvLogLevel,
		EnvShutdownTimeout,
		EnvMetricsEnabled,
		EnvStoreDriver,
		EnvDatabaseDSN,
		EnvMaxOpenConns,
		EnvMaxIdleConns,
		EnvConnMaxLifetime,
		EnvCacheEnabled,
		EnvRedisAddr,
		EnvRedisPassword,
		EnvRedisDB,
		EnvCacheTTL,
		EnvAIEndpoint,
		EnvAIModel,
		EnvAIAPIKey,
	}
	for _, env := range envVars {
		t.Setenv(env, "")
	}
	t.Setenv(EnvEnvFile, filepath.Join(t.TempDir(), "missing.env"))
}
