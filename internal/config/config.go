package config

import "time"

// Config holds the complete server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Logging LogConfig     `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	source string
}

// ServerConfig holds the LDAP listener configuration.
type ServerConfig struct {
	// Address is the TCP address the LDAP listener binds to.
	Address string `mapstructure:"address" validate:"required,listen_addr" yaml:"address"`

	// ReadTimeout closes a connection that sends nothing for this long.
	// Zero disables the timeout.
	ReadTimeout time.Duration `mapstructure:"read_timeout" validate:"gte=0" yaml:"read_timeout"`

	// ReadBufferSize is the size of each socket read.
	ReadBufferSize int `mapstructure:"read_buffer_size" validate:"gte=1,lte=1048576" yaml:"read_buffer_size"`

	// MaxValueSize bounds the declared length of a single request.
	MaxValueSize int `mapstructure:"max_value_size" validate:"gte=1" yaml:"max_value_size"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error DEBUG INFO WARN ERROR" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// MetricsConfig holds the Prometheus exposition configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Address string `mapstructure:"address" validate:"required,listen_addr" yaml:"address"`
}

// Source returns the path of the file the configuration was read from, or
// the empty string when it came from defaults and environment only.
func (c *Config) Source() string {
	return c.source
}
