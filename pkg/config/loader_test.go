package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(LoadOptions{})
	require.NoError(t, err, "loading embedded defaults should not fail")

	assert.Equal(t, "https://micropython.org/pi/v2", cfg.Index.URL)
	assert.Equal(t, "python-stdlib", cfg.Index.StdlibPrefix)
	assert.Equal(t, "mpy-cross", cfg.Compiler.Binary)
	assert.Equal(t, "armv6m", cfg.Compiler.March)
	assert.Equal(t, 5*time.Second, cfg.Compiler.Timeout)
	assert.Equal(t, time.Second, cfg.Compiler.PollInterval)
	assert.Equal(t, 10, cfg.Compiler.PollAttempts)
	assert.Equal(t, "export", cfg.Export.Directory)
}

func TestLoadProjectFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
	}{
		{"dotted config name", ".picoforge.toml"},
		{"plain config name", "picoforge.toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			content := `
[index]
url = "http://localhost:9999"

[compiler]
timeout = "30s"
`
			err := os.WriteFile(filepath.Join(root, tt.filename), []byte(content), 0644)
			require.NoError(t, err)

			cfg, err := Load(LoadOptions{ProjectRoot: root})
			require.NoError(t, err)

			assert.Equal(t, "http://localhost:9999", cfg.Index.URL,
				"project file should override the default index URL")
			assert.Equal(t, 30*time.Second, cfg.Compiler.Timeout,
				"project file should override the default timeout")
			// Untouched keys keep their defaults
			assert.Equal(t, "mpy-cross", cfg.Compiler.Binary)
			assert.Equal(t, "python-stdlib", cfg.Index.StdlibPrefix)
		})
	}
}

func TestLoadDottedFileWins(t *testing.T) {
	root := t.TempDir()
	err := os.WriteFile(filepath.Join(root, ".picoforge.toml"),
		[]byte("[export]\ndirectory = \"dist\"\n"), 0644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(root, "picoforge.toml"),
		[]byte("[export]\ndirectory = \"out\"\n"), 0644)
	require.NoError(t, err)

	cfg, err := Load(LoadOptions{ProjectRoot: root})
	require.NoError(t, err)
	assert.Equal(t, "dist", cfg.Export.Directory,
		"the dotted file name should be tried first")
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("PICOFORGE_COMPILER_BINARY", "/opt/bin/mpy-cross")
	t.Setenv("PICOFORGE_COMPILER_POLL_ATTEMPTS", "3")
	t.Setenv("PICOFORGE_INDEX_STDLIB_PREFIX", "micropython-stdlib")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "/opt/bin/mpy-cross", cfg.Compiler.Binary)
	assert.Equal(t, 3, cfg.Compiler.PollAttempts,
		"numeric env values should decode weakly")
	assert.Equal(t, "micropython-stdlib", cfg.Index.StdlibPrefix,
		"underscores past the section split must stay in the key")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	err := os.WriteFile(filepath.Join(root, ".picoforge.toml"),
		[]byte("[compiler]\nbinary = \"file-binary\"\n"), 0644)
	require.NoError(t, err)

	t.Setenv("PICOFORGE_COMPILER_BINARY", "env-binary")

	cfg, err := Load(LoadOptions{ProjectRoot: root})
	require.NoError(t, err)
	assert.Equal(t, "env-binary", cfg.Compiler.Binary,
		"environment must take precedence over the project file")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PICOFORGE_INDEX_URL", "http://env.example")

	cfg, err := Load(LoadOptions{
		Overrides: map[string]interface{}{
			"index.url":        "http://flags.example",
			"export.directory": "build",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "http://flags.example", cfg.Index.URL,
		"overrides must take precedence over environment")
	assert.Equal(t, "build", cfg.Export.Directory)
}

func TestLoadBadProjectFile(t *testing.T) {
	root := t.TempDir()
	err := os.WriteFile(filepath.Join(root, ".picoforge.toml"),
		[]byte("this is not toml ["), 0644)
	require.NoError(t, err)

	_, err = Load(LoadOptions{ProjectRoot: root})
	assert.Error(t, err, "malformed project config should fail loudly")
}

func TestLoadMissingRootIsFine(t *testing.T) {
	cfg, err := Load(LoadOptions{ProjectRoot: filepath.Join(t.TempDir(), "nope")})
	require.NoError(t, err, "a root without a config file falls back to defaults")
	assert.Equal(t, "mpy-cross", cfg.Compiler.Binary)
}

func TestDefaultConfigContent(t *testing.T) {
	content := DefaultConfigContent()
	require.NotEmpty(t, content, "the defaults file must be embedded")

	// The embedded file is the source of truth for Default(); spot-check
	// that the two agree.
	cfg := Default()
	assert.Contains(t, content, cfg.Index.URL)
	assert.Contains(t, content, cfg.Compiler.Binary)
	assert.Contains(t, content, cfg.Export.Directory)
}
