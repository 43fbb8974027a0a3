// Package config handles configuration loading and validation for the
// mining engine's CLI and long-running daemon mode.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the miner.
type Config struct {
	Network   string          `mapstructure:"network"`
	Mining    MiningConfig    `mapstructure:"mining"`
	Backends  BackendsConfig  `mapstructure:"backends"`
	Farm      FarmConfig      `mapstructure:"farm"`
	API       APIConfig       `mapstructure:"api"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Profiling ProfilingConfig `mapstructure:"profiling"`
	Log       LogConfig       `mapstructure:"log"`
}

// MiningConfig defines the default search parameters a job is submitted
// with when the CLI doesn't override them.
type MiningConfig struct {
	Backend   string `mapstructure:"backend"`
	Threads   int    `mapstructure:"threads"`
	Blocks    int    `mapstructure:"blocks"`
	RangeSize uint32 `mapstructure:"range_size"`
	Device    uint32 `mapstructure:"device"`
}

// BackendsConfig holds per-backend enable flags. They are loaded and
// defaulted but not consulted by dispatch: GetBackends and the backend
// table advertise every compiled-in backend regardless of these flags.
type BackendsConfig struct {
	Simple bool `mapstructure:"simple"`
	CPU    bool `mapstructure:"cpu"`
	GPU    bool `mapstructure:"gpu"`
}

// FarmConfig defines the Redis-backed, cross-process coordination layer
// used to rate-limit submissions across a fleet of miner processes. It
// never stores mining results; only ephemeral scores and cool-downs.
type FarmConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	RedisURL    string        `mapstructure:"redis_url"`
	RedisDB     int           `mapstructure:"redis_db"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
	MaxScore    int           `mapstructure:"max_score"`
	ScoreWindow time.Duration `mapstructure:"score_window"`
	CostPerJob  int           `mapstructure:"cost_per_job"`
}

// APIConfig defines the optional gin-based HTTP dashboard.
type APIConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	Bind        string   `mapstructure:"bind"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// NotifyConfig defines the optional websocket job-completion broadcaster.
type NotifyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Bind    string `mapstructure:"bind"`
	Path    string `mapstructure:"path"`
}

// TelemetryConfig defines the optional New Relic APM agent. The CLI's
// mine mode wraps its Mine call in a transaction; serve mode starts the
// agent but does not wrap the MineAsync submissions made by the dashboard.
type TelemetryConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	AppName    string `mapstructure:"app_name"`
	LicenseKey string `mapstructure:"license_key"`
}

// ProfilingConfig defines the optional net/http/pprof endpoint used to
// profile the search backends, particularly the cpu backend's goroutine
// fan-out.
type ProfilingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Bind    string `mapstructure:"bind"`

	// BlockProfileRate and MutexProfileFraction are forwarded to
	// runtime.SetBlockProfileRate/SetMutexProfileFraction when the server
	// starts, so the cpu backend's per-worker channel sends and the
	// registry's mutex can be sampled for contention. Zero (the default)
	// leaves both profiles disabled, matching runtime's own default.
	BlockProfileRate     int `mapstructure:"block_profile_rate"`
	MutexProfileFraction int `mapstructure:"mutex_profile_fraction"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Load reads configuration from file and environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/hsminer")
	}

	v.SetEnvPrefix("HSMINER")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("network", "main")

	v.SetDefault("mining.backend", "cpu")
	v.SetDefault("mining.threads", 4)
	v.SetDefault("mining.blocks", 256)
	v.SetDefault("mining.range_size", 1000000)
	v.SetDefault("mining.device", 0)

	v.SetDefault("backends.simple", true)
	v.SetDefault("backends.cpu", true)
	v.SetDefault("backends.gpu", false)

	v.SetDefault("farm.enabled", false)
	v.SetDefault("farm.redis_url", "127.0.0.1:6379")
	v.SetDefault("farm.redis_db", 0)
	v.SetDefault("farm.key_prefix", "hsminer")
	v.SetDefault("farm.max_score", 100)
	v.SetDefault("farm.score_window", "1m")
	v.SetDefault("farm.cost_per_job", 1)

	v.SetDefault("api.enabled", true)
	v.SetDefault("api.bind", "0.0.0.0:8080")
	v.SetDefault("api.cors_origins", []string{"*"})

	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.bind", "0.0.0.0:8081")
	v.SetDefault("notify.path", "/ws")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.app_name", "hsminer")

	v.SetDefault("profiling.enabled", false)
	v.SetDefault("profiling.bind", "127.0.0.1:6060")
	v.SetDefault("profiling.block_profile_rate", 0)
	v.SetDefault("profiling.mutex_profile_fraction", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Validate checks configuration for errors.
func (c *Config) Validate() error {
	if c.Mining.Backend == "" {
		return fmt.Errorf("mining.backend is required")
	}
	if c.Mining.RangeSize == 0 {
		return fmt.Errorf("mining.range_size must be > 0")
	}
	if c.Farm.Enabled && c.Farm.RedisURL == "" {
		return fmt.Errorf("farm.redis_url is required when farm is enabled")
	}
	if c.Telemetry.Enabled && c.Telemetry.LicenseKey == "" {
		return fmt.Errorf("telemetry.license_key is required when telemetry is enabled")
	}
	return nil
}
