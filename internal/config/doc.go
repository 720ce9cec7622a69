// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// The entry point preloads a .env file, so variables defined there are visible here.
package config
