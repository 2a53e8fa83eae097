package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// Registry sources
const (
	RegistryFile   = "file"
	RegistryRemote = "remote"
)

// Config holds all configuration
type Config struct {
	HTTPAddr string
	DataDir  string
	Log      LogConfig
	Auth     AuthConfig
	JWT      JWTConfig
	CDC      CDCConfig
	Registry RegistryConfig
	Redis    RedisConfig
	MySQL    MySQLConfig
	Migrate  bool
	Zoning   ZoningConfig
	Sim      SimConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string // text or json
}

// AuthConfig holds console login configuration
type AuthConfig struct {
	Enabled         bool
	CredentialsFile string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret      string
	ExpireHours int
	Issuer      string
}

// CDCConfig holds the CDC device connection
type CDCConfig struct {
	Enabled        bool
	URL            string
	TimeoutSeconds int
}

// Timeout returns the per-request timeout of the device client
func (c CDCConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RegistryConfig tells where the registered node inventory comes from
type RegistryConfig struct {
	Source string
	File   string
}

// RedisConfig holds Redis configuration for the cross-instance lock
type RedisConfig struct {
	LockEnabled bool
	Addr        string
	Password    string
	DB          int
	LockKey     string
	LockTTLSec  int
}

// MySQLConfig holds MySQL configuration of the operation log. An empty DSN keeps the log in memory.
type MySQLConfig struct {
	DSN string
}

// ZoningConfig holds coordinator behavior switches
type ZoningConfig struct {
	EagerOrphanCleanup bool
}

// SimConfig holds the CDC simulator configuration
type SimConfig struct {
	Addr      string
	NodesFile string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		DataDir:  getEnv("DATA_DIR", "data"),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Auth: AuthConfig{
			Enabled:         getEnvBool("AUTH_ENABLED", false),
			CredentialsFile: getEnv("AUTH_CREDENTIALS_FILE", "login_credentials.json"),
		},
		JWT: JWTConfig{
			Secret:      os.Getenv("JWT_SECRET"),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
			Issuer:      getEnv("JWT_ISSUER", "cdc_zoning"),
		},
		CDC: CDCConfig{
			Enabled:        getEnvBool("CDC_ENABLED", false),
			URL:            getEnv("CDC_URL", "http://127.0.0.1:5001"),
			TimeoutSeconds: getEnvInt("CDC_TIMEOUT_SEC", 10),
		},
		Registry: RegistryConfig{
			Source: getEnv("REGISTRY_SOURCE", RegistryFile),
			File:   getEnv("REGISTRY_FILE", "nvme_nodes.json"),
		},
		Redis: RedisConfig{
			LockEnabled: getEnvBool("REDIS_LOCK_ENABLED", false),
			Addr:        getEnv("REDIS_ADDR", "localhost:6379"),
			Password:    getEnv("REDIS_PASS", ""),
			DB:          getEnvInt("REDIS_DB", 0),
			LockKey:     getEnv("REDIS_LOCK_KEY", "cdc_zoning:lock"),
			LockTTLSec:  getEnvInt("REDIS_LOCK_TTL_SEC", 30),
		},
		MySQL: MySQLConfig{
			DSN: getEnv("MYSQL_DSN", ""),
		},
		Migrate: getEnvBool("MIGRATE", false),
		Zoning: ZoningConfig{
			EagerOrphanCleanup: getEnvBool("ZONING_EAGER_ORPHAN_CLEANUP", false),
		},
		Sim: SimConfig{
			Addr:      getEnv("SIM_ADDR", ":5001"),
			NodesFile: getEnv("SIM_NODES_FILE", "nvme_nodes.json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "1" || value == "true"
	}
	return defaultValue
}

// LoadFromINI loads configuration from INI file with environment variable override
func LoadFromINI(iniPath string) (*Config, error) {
	cfgFile, err := ini.Load(iniPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load INI file: %w", err)
	}

	// Priority: ENV > INI > default
	getValue := func(envKey, iniSection, iniKey, defaultValue string) string {
		if value := os.Getenv(envKey); value != "" {
			return value
		}
		if value := cfgFile.Section(iniSection).Key(iniKey).String(); value != "" {
			return value
		}
		return defaultValue
	}

	getValueInt := func(envKey, iniSection, iniKey string, defaultValue int) int {
		if value := os.Getenv(envKey); value != "" {
			if intValue, err := strconv.Atoi(value); err == nil {
				return intValue
			}
		}
		if cfgFile.Section(iniSection).HasKey(iniKey) {
			if value, err := cfgFile.Section(iniSection).Key(iniKey).Int(); err == nil {
				return value
			}
		}
		return defaultValue
	}

	getValueBool := func(envKey, iniSection, iniKey string, defaultValue bool) bool {
		if value := os.Getenv(envKey); value != "" {
			return value == "1" || value == "true"
		}
		if value, err := cfgFile.Section(iniSection).Key(iniKey).Bool(); err == nil {
			return value
		}
		return defaultValue
	}

	cfg := &Config{
		HTTPAddr: getValue("HTTP_ADDR", "http", "addr", ":8080"),
		DataDir:  getValue("DATA_DIR", "data", "dir", "data"),
		Log: LogConfig{
			Level:  getValue("LOG_LEVEL", "log", "level", "info"),
			Format: getValue("LOG_FORMAT", "log", "format", "text"),
		},
		Auth: AuthConfig{
			Enabled:         getValueBool("AUTH_ENABLED", "auth", "enabled", false),
			CredentialsFile: getValue("AUTH_CREDENTIALS_FILE", "auth", "credentials_file", "login_credentials.json"),
		},
		JWT: JWTConfig{
			Secret:      getValue("JWT_SECRET", "jwt", "secret", ""),
			ExpireHours: getValueInt("JWT_EXPIRE_HOURS", "jwt", "expire_hours", 24),
			Issuer:      getValue("JWT_ISSUER", "jwt", "issuer", "cdc_zoning"),
		},
		CDC: CDCConfig{
			Enabled:        getValueBool("CDC_ENABLED", "cdc", "enabled", false),
			URL:            getValue("CDC_URL", "cdc", "url", "http://127.0.0.1:5001"),
			TimeoutSeconds: getValueInt("CDC_TIMEOUT_SEC", "cdc", "timeout_sec", 10),
		},
		Registry: RegistryConfig{
			Source: getValue("REGISTRY_SOURCE", "registry", "source", RegistryFile),
			File:   getValue("REGISTRY_FILE", "registry", "file", "nvme_nodes.json"),
		},
		Redis: RedisConfig{
			LockEnabled: getValueBool("REDIS_LOCK_ENABLED", "redis", "lock_enabled", false),
			Addr:        getValue("REDIS_ADDR", "redis", "addr", "localhost:6379"),
			Password:    getValue("REDIS_PASS", "redis", "pass", ""),
			DB:          getValueInt("REDIS_DB", "redis", "db", 0),
			LockKey:     getValue("REDIS_LOCK_KEY", "redis", "lock_key", "cdc_zoning:lock"),
			LockTTLSec:  getValueInt("REDIS_LOCK_TTL_SEC", "redis", "lock_ttl_sec", 30),
		},
		MySQL: MySQLConfig{
			DSN: getValue("MYSQL_DSN", "mysql", "dsn", ""),
		},
		Migrate: getValueBool("MIGRATE", "app", "migrate", false),
		Zoning: ZoningConfig{
			EagerOrphanCleanup: getValueBool("ZONING_EAGER_ORPHAN_CLEANUP", "zoning", "eager_orphan_cleanup", false),
		},
		Sim: SimConfig{
			Addr:      getValue("SIM_ADDR", "sim", "addr", ":5001"),
			NodesFile: getValue("SIM_NODES_FILE", "sim", "nodes_file", "nvme_nodes.json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.Enabled && c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_ENABLED is set")
	}
	if c.Registry.Source != RegistryFile && c.Registry.Source != RegistryRemote {
		return fmt.Errorf("REGISTRY_SOURCE must be %q or %q, got %q", RegistryFile, RegistryRemote, c.Registry.Source)
	}
	if c.Registry.Source == RegistryRemote && !c.CDC.Enabled {
		return fmt.Errorf("REGISTRY_SOURCE=remote requires CDC_ENABLED")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.Log.Format)
	}
	if c.CDC.TimeoutSeconds <= 0 {
		return fmt.Errorf("CDC_TIMEOUT_SEC must be positive")
	}
	return nil
}
