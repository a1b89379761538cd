// Package config provides configuration loading and validation for the
// ldapfixture server.
//
// # Sources
//
// Configuration comes from, in increasing precedence: built-in defaults, a
// YAML file, and LDAPFIXTURE_* environment variables:
//
//	server:
//	  address: 127.0.0.1:3890
//	  read_timeout: 30s
//	  read_buffer_size: 4096
//	  max_value_size: 16777216
//	logging:
//	  level: info
//	  format: text
//	  output: stderr
//	metrics:
//	  enabled: true
//	  address: 127.0.0.1:9390
//
// Nested keys map to environment variables with underscores, so
// LDAPFIXTURE_LOGGING_LEVEL=debug overrides logging.level.
//
// # Loading
//
//	cfg, err := config.Load("/etc/ldapfixture/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Load validates the result; ValidateConfig lists every problem as a
// ValidationError naming the offending key.
//
// # Watching
//
// ConfigWatcher reloads the file when it changes on disk and reports the
// old and new configuration. Invalid edits are reported through OnError and
// leave the current configuration in place. The fixture directory itself is
// not configurable.
package config
