// Package project resolves the on-disk layout of a picoforge project.
// The root is discovered by walking up from the working directory until a
// marker file appears; every other directory is derived from the root.
package project

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/picoforge/picoforge/pkg/errors"
	"github.com/picoforge/picoforge/pkg/logging"
)

const (
	// MarkerFile is the picoforge-specific root marker
	MarkerFile = ".picoforge"

	// SourceExt is the extension of compilable source files
	SourceExt = ".py"

	// ArtifactExt is the extension of cross-compiled bytecode files
	ArtifactExt = ".mpy"

	// DefaultExportDir is the export tree directory name under the root
	DefaultExportDir = "export"

	// LibDirName is the directory for vendored third-party modules
	LibDirName = "lib"

	// SrcDirName is the optional src/ layout directory
	SrcDirName = "src"
)

// RootMarkers are the files that identify a project root, tried in order
var RootMarkers = []string{MarkerFile, "pyproject.toml", "README.md", "LICENSE"}

// Layout is an immutable snapshot of a project's directories, resolved once
// per invocation
type Layout struct {
	// Root is the absolute project root
	Root string

	// Name is the package name derived from the root directory name
	Name string

	// Package is the directory holding the project's own modules
	Package string

	// Lib is the directory third-party packages are installed into
	Lib string

	// Export is the root of the assembled export tree
	Export string
}

// DiscoverRoot walks up from start looking for a directory that contains one
// of the root markers. An empty start means the current working directory.
func DiscoverRoot(start string) (string, error) {
	logger := logging.GetLogger("project")

	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, errors.ErrFileAccess, "failed to get current directory")
		}
		start = cwd
	}

	abs, err := filepath.Abs(expandHome(start))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve %s", start)
	}

	dir := abs
	for {
		for _, marker := range RootMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				logger.Trace().Str("root", dir).Str("marker", marker).Msg("Found project root")
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.Newf(errors.ErrProjectRoot, "no project root found above %s", abs).
		WithDetail("markers", RootMarkers)
}

// NewLayout derives the project layout from an explicit root. An empty
// exportDir selects the default export directory name.
func NewLayout(root, exportDir string) (*Layout, error) {
	logger := logging.GetLogger("project")

	abs, err := filepath.Abs(expandHome(root))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve %s", root)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrProjectRoot, "project root %s does not exist", abs)
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot access project root").
			WithDetail("path", abs)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrInvalidInput, "project root is not a directory").
			WithDetail("path", abs)
	}

	settings, err := loadMarkerSettings(abs)
	if err != nil {
		return nil, err
	}

	if exportDir == "" {
		exportDir = settings.Export
	}
	if exportDir == "" {
		exportDir = DefaultExportDir
	}

	name := packageName(filepath.Base(abs))
	if settings.Package != "" {
		name = packageName(settings.Package)
	}
	pkg := packageDir(abs, name)

	l := &Layout{
		Root:    abs,
		Name:    name,
		Package: pkg,
		Lib:     filepath.Join(pkg, LibDirName),
		Export:  filepath.Join(abs, exportDir),
	}

	logger.Debug().
		Str("root", l.Root).
		Str("package", l.Package).
		Str("export", l.Export).
		Msg("Resolved project layout")

	return l, nil
}

// Discover resolves the layout starting from the given directory
func Discover(start, exportDir string) (*Layout, error) {
	root, err := DiscoverRoot(start)
	if err != nil {
		return nil, err
	}
	return NewLayout(root, exportDir)
}

// markerSettings is the optional TOML content of the marker file. Most
// marker files are empty; a non-empty one may override derived values.
type markerSettings struct {
	// Package overrides the package name derived from the root directory
	Package string `toml:"package"`
	// Export overrides the default export directory name
	Export string `toml:"export"`
}

// loadMarkerSettings reads overrides from the marker file when present.
// The root may have been identified by another marker entirely, so a
// missing file is not an error.
func loadMarkerSettings(root string) (markerSettings, error) {
	var settings markerSettings

	data, err := os.ReadFile(filepath.Join(root, MarkerFile))
	if err != nil {
		return settings, nil
	}

	if err := toml.Unmarshal(data, &settings); err != nil {
		return settings, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse %s", MarkerFile)
	}
	return settings, nil
}

// packageName normalizes a directory name into a package name
func packageName(dirName string) string {
	return strings.ReplaceAll(strings.ToLower(dirName), "-", "_")
}

// packageDir prefers the src/ layout when it exists
func packageDir(root, name string) string {
	srcLayout := filepath.Join(root, SrcDirName, name)
	if info, err := os.Stat(srcLayout); err == nil && info.IsDir() {
		return srcLayout
	}
	return filepath.Join(root, name)
}

// Sources returns the project's compilable files: top-level package modules
// plus everything under lib/, each group sorted.
func (l *Layout) Sources() ([]string, error) {
	logger := logging.GetLogger("project")

	var sources []string

	entries, err := os.ReadDir(l.Package)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Trace().Str("package", l.Package).Msg("Package directory missing, no sources")
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read package directory").
			WithDetail("path", l.Package)
	}

	for _, entry := range entries {
		if entry.Type().IsRegular() && filepath.Ext(entry.Name()) == SourceExt {
			sources = append(sources, filepath.Join(l.Package, entry.Name()))
		}
	}
	// ReadDir returns entries sorted by name already

	libSources, err := l.libSources()
	if err != nil {
		return nil, err
	}
	sources = append(sources, libSources...)

	logger.Trace().Int("count", len(sources)).Msg("Enumerated project sources")
	return sources, nil
}

// libSources walks lib/ recursively for source files, sorted by path
func (l *Layout) libSources() ([]string, error) {
	if _, err := os.Stat(l.Lib); os.IsNotExist(err) {
		return nil, nil
	}

	var sources []string
	err := filepath.WalkDir(l.Lib, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && filepath.Ext(path) == SourceExt {
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot walk lib directory").
			WithDetail("path", l.Lib)
	}
	// WalkDir visits entries in lexical order
	return sources, nil
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = os.Getenv("HOME")
			if homeDir == "" {
				return path
			}
		}

		if len(path) == 1 {
			return homeDir
		}

		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}

		// ~something (not the user's home)
		return path
	}

	return path
}
