// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Backend BackendConfig `mapstructure:"backend"`
	Storage StorageConfig `mapstructure:"storage"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// BackendConfig holds settings for the remote ATS scoring service.
type BackendConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        int           `mapstructure:"timeout"`         // milliseconds
	RequestsPerMin int           `mapstructure:"requests_per_min"`
	Burst          int           `mapstructure:"burst"`
	Breaker        BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig holds circuit breaker settings for analyze/optimize calls.
type BreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MinRequests      uint32  `mapstructure:"min_requests"`
	FailureThreshold float64 `mapstructure:"failure_threshold"`
	OpenTimeout      int     `mapstructure:"open_timeout"` // milliseconds
}

// StorageConfig selects and configures the persistence tiers.
type StorageConfig struct {
	Backend    string      `mapstructure:"backend"` // "memory" or "redis"
	Redis      RedisConfig `mapstructure:"redis"`
	HandoffTTL int         `mapstructure:"handoff_ttl"` // seconds
	SessionTTL int         `mapstructure:"session_ttl"` // seconds
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MetricsConfig controls the Prometheus endpoint exposed by long runs.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Validate checks critical configuration fields.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	switch c.Storage.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("storage.backend must be \"memory\" or \"redis\", got %q", c.Storage.Backend)
	}
	if c.Storage.Backend == "redis" && c.Storage.Redis.Address == "" {
		return fmt.Errorf("storage.redis.address is required when storage.backend is redis")
	}
	return nil
}
