// Package exporter assembles the distributable export tree. A plain export
// mirrors the package directory byte for byte; a precompiled export swaps
// each .py source for its cross-compiled .mpy artifact, compiling on the
// fly when no artifact already sits beside the source. One failed item
// never aborts its siblings.
package exporter

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/picoforge/picoforge/pkg/compiler"
	"github.com/picoforge/picoforge/pkg/errors"
	"github.com/picoforge/picoforge/pkg/logging"
	"github.com/picoforge/picoforge/pkg/progress"
	"github.com/picoforge/picoforge/pkg/project"
	"github.com/picoforge/picoforge/pkg/tree"
)

// ItemKind says how a file travels into the export tree.
type ItemKind string

const (
	// KindRaw files are byte-for-byte copies of their source
	KindRaw ItemKind = "raw"
	// KindCompiled files land as cross-compiled bytecode artifacts
	KindCompiled ItemKind = "compiled"
)

// ItemStatus is the outcome of one export item.
type ItemStatus string

const (
	// ItemPending means the item has not been processed yet
	ItemPending ItemStatus = "pending"
	// ItemDone means the destination was written
	ItemDone ItemStatus = "done"
	// ItemError means the item failed; nothing was written for it
	ItemError ItemStatus = "error"
)

// Item is one file's journey into the export tree. Dest is the planned
// destination path; it exists on disk only when Status is ItemDone.
type Item struct {
	Source string
	Dest   string
	Kind   ItemKind
	Status ItemStatus
}

// CompileFunc produces the bytecode artifact for one source file.
type CompileFunc func(ctx context.Context, source string) (*compiler.Task, error)

// Result is the outcome of one export run.
type Result struct {
	// Items lists every processed file in walk order
	Items []Item

	// Errors collects per-item failures, one per ItemError item
	Errors []error

	// ProjectTree and ExportTree are display snapshots taken after the run.
	// ProjectTree is nil when the package directory does not exist.
	ProjectTree *tree.Node
	ExportTree  *tree.Node
}

// Planner executes exports for one project layout.
type Planner struct {
	layout  *project.Layout
	compile CompileFunc
	tracker *progress.Tracker
}

// NewPlanner creates a Planner. compile may be nil when precompiled exports
// are never requested; a nil tracker discards progress.
func NewPlanner(layout *project.Layout, compile CompileFunc, tracker *progress.Tracker) *Planner {
	if tracker == nil {
		tracker = progress.NewTracker()
	}
	return &Planner{layout: layout, compile: compile, tracker: tracker}
}

// Export runs one export pass over the package directory. Setup failures
// return an error; per-item failures are collected in Result.Errors and
// leave the remaining items untouched.
func (p *Planner) Export(ctx context.Context, precompiledOnly bool) (*Result, error) {
	logger := logging.GetLogger("exporter")
	defer logging.Timed(logger, "export")()

	if precompiledOnly && p.compile == nil {
		return nil, errors.New(errors.ErrInternal, "precompiled export requested without a compiler")
	}

	files, err := p.collectFiles()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(p.layout.Export, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create export directory %s", p.layout.Export)
	}

	logger.Info().
		Str("package", p.layout.Package).
		Str("export", p.layout.Export).
		Int("files", len(files)).
		Bool("precompiled", precompiledOnly).
		Msg("Exporting project")

	overall := p.tracker.AddTask("Exporting", p.layout.Name, len(files))

	result := &Result{}
	for _, rel := range files {
		item := p.exportOne(ctx, rel, precompiledOnly, &result.Errors)
		result.Items = append(result.Items, item)
		p.tracker.UpdateTask(overall, progress.Update{Advance: 1})
	}

	p.tracker.UpdateTask(overall, progress.Update{Description: "Exported"})
	p.tracker.StopTask(overall)

	if _, err := os.Stat(p.layout.Package); err == nil {
		snapshot, terr := tree.Build(p.layout.Package)
		if terr != nil {
			return nil, terr
		}
		result.ProjectTree = snapshot
	}
	snapshot, terr := tree.Build(p.layout.Export)
	if terr != nil {
		return nil, terr
	}
	result.ExportTree = snapshot

	logger.Info().
		Int("items", len(result.Items)).
		Int("errors", len(result.Errors)).
		Msg("Export finished")

	return result, nil
}

// exportOne moves a single file into the export tree and reports its
// progress. Failures are appended to errs and reflected in the item status.
func (p *Planner) exportOne(ctx context.Context, rel string, precompiledOnly bool, errs *[]error) Item {
	logger := logging.GetLogger("exporter")

	item := Item{
		Source: filepath.Join(p.layout.Package, rel),
		Dest:   filepath.Join(p.layout.Export, rel),
		Kind:   KindRaw,
		Status: ItemPending,
	}

	taskID := p.tracker.AddTask("Exporting", rel, 1)
	fail := func(err error) Item {
		logger.Warn().Err(err).Str("file", rel).Msg("Export item failed")
		*errs = append(*errs, err)
		item.Status = ItemError
		p.tracker.UpdateTask(taskID, progress.Update{Description: "Error"})
		p.tracker.StopTask(taskID)
		return item
	}
	done := func(description string) Item {
		item.Status = ItemDone
		p.tracker.UpdateTask(taskID, progress.Update{Description: description, Advance: 1})
		p.tracker.StopTask(taskID)
		return item
	}

	if err := os.MkdirAll(filepath.Dir(item.Dest), 0755); err != nil {
		return fail(errors.Wrapf(err, errors.ErrDirCreate, "cannot create directory for '%s'", rel))
	}

	if precompiledOnly && strings.HasSuffix(rel, project.SourceExt) {
		item.Kind = KindCompiled

		// A source-suffixed copy left over from an earlier plain export
		// must not survive next to the artifact
		if err := os.Remove(item.Dest); err != nil && !os.IsNotExist(err) {
			return fail(errors.Wrapf(err, errors.ErrFileWrite, "cannot remove stale copy of '%s'", rel))
		}
		item.Dest = compiler.ArtifactPath(item.Dest)

		artifact := compiler.ArtifactPath(item.Source)
		compiledNow := false
		if _, err := os.Stat(artifact); err != nil {
			task, cerr := p.compile(ctx, item.Source)
			if cerr != nil {
				return fail(cerr)
			}
			artifact = task.Artifact
			compiledNow = true
		}

		if err := copyFile(artifact, item.Dest); err != nil {
			return fail(err)
		}
		if compiledNow {
			return done("Exported/Compiled")
		}
		return done("Exported")
	}

	if err := copyFile(item.Source, item.Dest); err != nil {
		return fail(err)
	}
	return done("Exported")
}

// collectFiles enumerates the regular files under the package directory as
// sorted package-relative paths. Compiled artifacts are not payload and are
// excluded from the walk.
func (p *Planner) collectFiles() ([]string, error) {
	info, err := os.Stat(p.layout.Package)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot access package directory").
			WithDetail("path", p.layout.Package)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrInvalidInput, "package path is not a directory").
			WithDetail("path", p.layout.Package)
	}

	var files []string
	err = filepath.WalkDir(p.layout.Package, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if strings.HasSuffix(d.Name(), project.ArtifactExt) {
			return nil
		}
		rel, relErr := filepath.Rel(p.layout.Package, path)
		if relErr != nil {
			return relErr
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to scan package directory").
			WithDetail("path", p.layout.Package)
	}

	sort.Strings(files)
	return files, nil
}

// copyFile copies src to dst byte for byte.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot open '%s'", src)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot create '%s'", dst)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed writing '%s'", dst)
	}
	return nil
}
