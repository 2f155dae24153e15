package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Timecode TimecodeConfig `mapstructure:"timecode"`
}

type ServerConfig struct {
	// HTTP/1.1 and HTTP/2
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	DebugEndpoints  bool          `mapstructure:"debug_endpoints"`
	HealthInterval  time.Duration `mapstructure:"health_interval"`
	MaxHeapBytes    uint64        `mapstructure:"max_heap_bytes"`

	HTTP3     HTTP3Config     `mapstructure:"http3"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type HTTP3Config struct {
	Enabled     bool   `mapstructure:"enabled"`
	Port        int    `mapstructure:"port"`
	TLSCertFile string `mapstructure:"tls_cert_file"`
	TLSKeyFile  string `mapstructure:"tls_key_file"`

	// QUIC specific
	MaxIncomingStreams int64         `mapstructure:"max_incoming_streams"`
	MaxIdleTimeout     time.Duration `mapstructure:"max_idle_timeout"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addresses    []string      `mapstructure:"addresses"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	MaxRetries   int           `mapstructure:"max_retries"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
	Prefix  string        `mapstructure:"prefix"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`     // json or text
	Output     string `mapstructure:"output"`     // stdout, stderr, or file path
	MaxSize    int    `mapstructure:"max_size"`   // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Port    int    `mapstructure:"port"`
}

type TimecodeConfig struct {
	MaxBatchSize  int  `mapstructure:"max_batch_size"` // ranges per request
	LogAdvisories bool `mapstructure:"log_advisories"`
}

// Load reads configuration from configPath, applies TIMECODE_ environment
// overrides and validates the result. An empty path uses defaults and the
// environment only.
func Load(configPath string) (*Config, error) {
	viper.Reset()
	viper.SetConfigType("yaml")

	// Environment variable override
	viper.SetEnvPrefix("TIMECODE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults
	setDefaults()

	if configPath != "" {
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.read_timeout", "10s")
	viper.SetDefault("server.write_timeout", "10s")
	viper.SetDefault("server.shutdown_timeout", "10s")
	viper.SetDefault("server.debug_endpoints", false)
	viper.SetDefault("server.health_interval", "30s")
	viper.SetDefault("server.max_heap_bytes", 0)

	// HTTP/3 defaults
	viper.SetDefault("server.http3.enabled", false)
	viper.SetDefault("server.http3.port", 8443)
	viper.SetDefault("server.http3.max_incoming_streams", 1000)
	viper.SetDefault("server.http3.max_idle_timeout", "30s")

	// Rate limit defaults
	viper.SetDefault("server.rate_limit.enabled", true)
	viper.SetDefault("server.rate_limit.requests_per_second", 200)
	viper.SetDefault("server.rate_limit.burst", 400)

	// Redis defaults
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.addresses", []string{"localhost:6379"})
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.dial_timeout", "5s")
	viper.SetDefault("redis.read_timeout", "3s")
	viper.SetDefault("redis.write_timeout", "3s")
	viper.SetDefault("redis.pool_size", 20)
	viper.SetDefault("redis.min_idle_conns", 2)

	// Cache defaults
	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.ttl", "1h")
	viper.SetDefault("cache.prefix", "timecode:")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
	viper.SetDefault("logging.max_size", 100)
	viper.SetDefault("logging.max_backups", 5)
	viper.SetDefault("logging.max_age", 30)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
	viper.SetDefault("metrics.port", 9090)

	// Timecode defaults
	viper.SetDefault("timecode.max_batch_size", 1000)
	viper.SetDefault("timecode.log_advisories", true)
}
