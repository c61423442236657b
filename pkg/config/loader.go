package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/picoforge/picoforge/pkg/errors"
)

// ConfigFileNames are the project config file names tried in order
var ConfigFileNames = []string{".picoforge.toml", "picoforge.toml"}

// LoadOptions controls which sources feed the configuration
type LoadOptions struct {
	// ProjectRoot is the directory searched for a project config file.
	// Empty skips the file layer.
	ProjectRoot string
	// Overrides are applied last, above environment variables. Keys use
	// dotted paths such as "compiler.binary".
	Overrides map[string]interface{}
}

// Load assembles the configuration from all layers
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(bytesProvider{raw: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load embedded defaults")
	}

	// 2. Project config file if present
	if opts.ProjectRoot != "" {
		for _, filename := range ConfigFileNames {
			path := filepath.Join(opts.ProjectRoot, filename)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
					return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load project config from %s", path)
				}
				break
			}
		}
	}

	// 3. Environment variables. Sections are single words, so only the
	// first underscore separates section from key.
	err := k.Load(env.Provider("PICOFORGE_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "PICOFORGE_"))
		return strings.Replace(s, "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment variables")
	}

	// 4. Explicit overrides, typically from command-line flags
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	// 5. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	return &cfg, nil
}

// bytesProvider feeds an in-memory byte slice to koanf. The stock
// providers read files, environment, or maps, none of which fits the
// embedded defaults.
type bytesProvider struct{ raw []byte }

func (p bytesProvider) ReadBytes() ([]byte, error) { return p.raw, nil }

func (p bytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrConfigLoad, "bytesProvider requires a parser")
}
