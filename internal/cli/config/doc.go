// Package config provides the graphdev CLI configuration.
//
//   - spec.go: Config struct and its sections
//   - default.go: built-in defaults
//   - loader.go: loading from file, GRAPHDEV_* environment and flags
//   - verify.go: validation
//
// Priority, highest first: command-line flags, environment variables,
// the config file (~/.config/graphdev/config.yaml unless --config is set),
// built-in defaults.
package config
