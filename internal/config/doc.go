// Package config loads and validates application settings from environment
// variables (QUESTUP_ prefix) and an optional config.yaml, using viper for
// loading and go-playground/validator for validation.
package config
