package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values.
const (
	DefaultAddress        = "127.0.0.1:3890"
	DefaultReadBufferSize = 4096
	DefaultMaxValueSize   = 16 << 20
	DefaultMetricsAddress = "127.0.0.1:9390"
)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:        DefaultAddress,
			ReadTimeout:    0,
			ReadBufferSize: DefaultReadBufferSize,
			MaxValueSize:   DefaultMaxValueSize,
		},
		Logging: LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: DefaultMetricsAddress,
		},
	}
}

// ApplyDefaults fills zero-valued fields of cfg with defaults.
// ReadTimeout and Metrics.Enabled are left alone since their zero values
// are meaningful.
func ApplyDefaults(cfg *Config) {
	d := DefaultConfig()

	if cfg.Server.Address == "" {
		cfg.Server.Address = d.Server.Address
	}
	if cfg.Server.ReadBufferSize == 0 {
		cfg.Server.ReadBufferSize = d.Server.ReadBufferSize
	}
	if cfg.Server.MaxValueSize == 0 {
		cfg.Server.MaxValueSize = d.Server.MaxValueSize
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = d.Logging.Format
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = d.Logging.Output
	}

	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = d.Metrics.Address
	}
}

// setDefaults registers every key with viper so environment variables are
// honoured even when no config file mentions the key.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("server.read_timeout", time.Duration(0))
	v.SetDefault("server.read_buffer_size", d.Server.ReadBufferSize)
	v.SetDefault("server.max_value_size", d.Server.MaxValueSize)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.address", d.Metrics.Address)
}
