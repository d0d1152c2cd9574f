// Package config handles configuration loading, parsing, and validation
// from defaults, an optional YAML file and KANJI_ environment variables.
// It provides type-safe access to the storage, session timing and reward
// settings while keeping configuration details separate from business logic.
package config
