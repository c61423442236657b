package config

import _ "embed"

// defaultConfig is the baseline configuration compiled into the binary.
// Load layers project files, environment variables, and flag overrides
// on top of it.
//
//go:embed embedded/defaults.toml
var defaultConfig []byte

// DefaultConfigContent returns the embedded defaults as shipped
func DefaultConfigContent() string {
	return string(defaultConfig)
}
