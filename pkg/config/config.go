// Package config loads picoforge configuration from layered sources:
// embedded defaults, the project .picoforge.toml, PICOFORGE_* environment
// variables, and explicit overrides, in that order of precedence.
package config

import "time"

// Config is the main configuration structure
type Config struct {
	Index    Index    `koanf:"index"`
	Compiler Compiler `koanf:"compiler"`
	Export   Export   `koanf:"export"`
}

// Index configures the remote package index
type Index struct {
	// URL is the base URL of the package index
	URL string `koanf:"url"`
	// StdlibPrefix marks catalog paths that belong to the standard library
	StdlibPrefix string `koanf:"stdlib_prefix"`
}

// Compiler configures the external cross-compiler
type Compiler struct {
	// Binary is the cross-compiler executable, looked up on PATH
	Binary string `koanf:"binary"`
	// March is the target architecture passed as -march=<value>
	March string `koanf:"march"`
	// Timeout bounds a single compiler run
	Timeout time.Duration `koanf:"timeout"`
	// PollInterval is the wait between checks for the emitted artifact
	PollInterval time.Duration `koanf:"poll_interval"`
	// PollAttempts bounds how many times the artifact check runs
	PollAttempts int `koanf:"poll_attempts"`
}

// Export configures the export tree
type Export struct {
	// Directory is the export root, relative to the project root
	Directory string `koanf:"directory"`
}

// Default returns the default configuration
func Default() *Config {
	// Load the actual defaults from the embedded file
	cfg, err := Load(LoadOptions{})
	if err != nil {
		// Fallback to a minimal config if loading fails
		return &Config{
			Index: Index{
				URL:          "https://micropython.org/pi/v2",
				StdlibPrefix: "python-stdlib",
			},
			Compiler: Compiler{
				Binary:       "mpy-cross",
				March:        "armv6m",
				Timeout:      5 * time.Second,
				PollInterval: time.Second,
				PollAttempts: 10,
			},
			Export: Export{
				Directory: "export",
			},
		}
	}
	return cfg
}
