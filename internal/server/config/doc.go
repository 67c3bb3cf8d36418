// Package config provides the foteam-server configuration.
//
// This package defines the server configuration structure and validation:
//
//   - types.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation of addresses, durations, GC and cookie settings
//   - sanitize.go: Log sanitization (hide sensitive values)
//
// Configuration is loaded via internal/infra/confloader from a YAML file,
// FOTEAM_ environment variables and flags.
package config
