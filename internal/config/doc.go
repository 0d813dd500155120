// Package config defines the application configuration structure and the
// loader that populates it from environment variables and an optional
// YAML file. All configuration is validated before use so the rest of
// the application can assume well-formed values.
package config
