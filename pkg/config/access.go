package config

// globalConfig holds the process-wide configuration set by Initialize.
var globalConfig *Config

// Initialize installs cfg as the process-wide configuration. A nil cfg
// installs the built-in defaults.
func Initialize(cfg *Config) {
	if cfg == nil {
		cfg = Default()
	}
	globalConfig = cfg
}

// Get returns the process-wide configuration, installing the defaults
// on first use if Initialize was never called.
func Get() *Config {
	if globalConfig == nil {
		Initialize(nil)
	}
	return globalConfig
}

// GetIndex returns the package index settings
func GetIndex() Index { return Get().Index }

// GetCompiler returns the cross-compiler settings
func GetCompiler() Compiler { return Get().Compiler }

// GetExport returns the export settings
func GetExport() Export { return Get().Export }
