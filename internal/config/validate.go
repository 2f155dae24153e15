package config

import (
	"fmt"
	"os"
)

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if c.Redis.Enabled {
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("redis config: %w", err)
		}
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if c.Cache.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("cache config: cache requires redis to be enabled")
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}

	if err := c.Timecode.Validate(); err != nil {
		return fmt.Errorf("timecode config: %w", err)
	}

	return nil
}

func (s *ServerConfig) Validate() error {
	if s.HTTPPort < 1 || s.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", s.HTTPPort)
	}

	if s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.ShutdownTimeout < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}

	if s.HealthInterval < 0 {
		return fmt.Errorf("health interval cannot be negative")
	}

	if err := s.HTTP3.Validate(); err != nil {
		return err
	}

	if s.HTTP3.Enabled && s.HTTP3.Port == s.HTTPPort {
		return fmt.Errorf("HTTP3 port %d conflicts with HTTP port", s.HTTP3.Port)
	}

	return s.RateLimit.Validate()
}

func (h *HTTP3Config) Validate() error {
	if !h.Enabled {
		return nil
	}

	if h.Port < 1 || h.Port > 65535 {
		return fmt.Errorf("invalid HTTP3 port: %d", h.Port)
	}

	if h.TLSCertFile == "" {
		return fmt.Errorf("TLS certificate file is required")
	}

	if h.TLSKeyFile == "" {
		return fmt.Errorf("TLS key file is required")
	}

	// Check if certificate files exist
	if _, err := os.Stat(h.TLSCertFile); os.IsNotExist(err) {
		return fmt.Errorf("TLS certificate file not found: %s", h.TLSCertFile)
	}

	if _, err := os.Stat(h.TLSKeyFile); os.IsNotExist(err) {
		return fmt.Errorf("TLS key file not found: %s", h.TLSKeyFile)
	}

	if h.MaxIncomingStreams <= 0 {
		return fmt.Errorf("max_incoming_streams must be positive")
	}

	return nil
}

func (r *RateLimitConfig) Validate() error {
	if !r.Enabled {
		return nil
	}

	if r.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive")
	}

	if r.Burst <= 0 {
		return fmt.Errorf("burst must be positive")
	}

	return nil
}

func (r *RedisConfig) Validate() error {
	if len(r.Addresses) == 0 {
		return fmt.Errorf("at least one Redis address is required")
	}

	if r.DB < 0 {
		return fmt.Errorf("invalid Redis database number: %d", r.DB)
	}

	if r.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}

	if r.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be positive")
	}

	if r.MinIdleConns < 0 {
		return fmt.Errorf("min_idle_conns cannot be negative")
	}

	if r.MinIdleConns > r.PoolSize {
		return fmt.Errorf("min_idle_conns cannot be greater than pool_size")
	}

	return nil
}

func (c *CacheConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.TTL <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	if c.Prefix == "" {
		return fmt.Errorf("prefix cannot be empty")
	}

	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"panic": true,
		"fatal": true,
		"error": true,
		"warn":  true,
		"info":  true,
		"debug": true,
		"trace": true,
	}

	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s", l.Level)
	}

	if l.Format != "json" && l.Format != "text" {
		return fmt.Errorf("log format must be 'json' or 'text'")
	}

	if l.Output != "stdout" && l.Output != "stderr" {
		// File output is rotated by lumberjack
		if l.MaxSize <= 0 {
			return fmt.Errorf("max_size must be positive for file output")
		}
		if l.MaxBackups < 0 {
			return fmt.Errorf("max_backups cannot be negative")
		}
		if l.MaxAge < 0 {
			return fmt.Errorf("max_age cannot be negative")
		}
	}

	return nil
}

func (m *MetricsConfig) Validate() error {
	if m.Enabled {
		if m.Port < 1 || m.Port > 65535 {
			return fmt.Errorf("invalid metrics port: %d", m.Port)
		}

		if m.Path == "" {
			return fmt.Errorf("metrics path cannot be empty")
		}
	}

	return nil
}

func (t *TimecodeConfig) Validate() error {
	if t.MaxBatchSize <= 0 {
		return fmt.Errorf("max_batch_size must be positive")
	}

	return nil
}
