// Package export implements the export command: assemble the distributable
// tree, plain or precompiled, and capture display snapshots of both sides.
package export

import (
	"context"
	"fmt"

	"github.com/picoforge/picoforge/pkg/compiler"
	"github.com/picoforge/picoforge/pkg/errors"
	"github.com/picoforge/picoforge/pkg/exporter"
	"github.com/picoforge/picoforge/pkg/logging"
	"github.com/picoforge/picoforge/pkg/progress"
	"github.com/picoforge/picoforge/pkg/project"
	"github.com/picoforge/picoforge/pkg/tree"
)

// ExportOptions defines the options for the ExportProject command.
type ExportOptions struct {
	// Precompiled swaps .py sources for their .mpy artifacts in the
	// export tree.
	Precompiled bool
	// Layout is the resolved project layout; required.
	Layout *project.Layout
	// Planner overrides the exporter (optional; built from Layout,
	// Compiler, and Tracker when nil).
	Planner *exporter.Planner
	// Compiler backs on-the-fly compilation when Planner is nil
	// (optional, defaults to the configured compiler).
	Compiler *compiler.Compiler
	// Tracker receives progress events (optional).
	Tracker *progress.Tracker
}

// ExportResult reports the outcome of one export run.
type ExportResult struct {
	// Items lists every processed file in walk order.
	Items []exporter.Item
	// ProjectTree and ExportTree are display snapshots taken after the run.
	ProjectTree *tree.Node
	ExportTree  *tree.Node
	// Errors collects per-item failures.
	Errors []error
	// Message summarizes the run for plain output.
	Message string
}

// ExportProject assembles the export tree for the project. Per-item
// failures are collected without aborting the run; only setup problems
// return an error.
func ExportProject(ctx context.Context, opts ExportOptions) (*ExportResult, error) {
	log := logging.GetLogger("commands.export")
	log.Debug().Str("command", "ExportProject").Bool("precompiled", opts.Precompiled).Msg("Executing command")

	if opts.Layout == nil {
		return nil, errors.New(errors.ErrInvalidInput, "no project layout to export")
	}

	tracker := opts.Tracker
	if tracker == nil {
		tracker = progress.NewTracker()
	}

	planner := opts.Planner
	if planner == nil {
		comp := opts.Compiler
		if comp == nil {
			comp = compiler.NewDefault()
		}
		planner = exporter.NewPlanner(opts.Layout, comp.Compile, tracker)
	}

	run, err := planner.Export(ctx, opts.Precompiled)
	if err != nil {
		return nil, err
	}
	tracker.HideFinished()

	result := &ExportResult{
		Items:       run.Items,
		ProjectTree: run.ProjectTree,
		ExportTree:  run.ExportTree,
		Errors:      run.Errors,
		Message:     exportMessage(len(run.Items), len(run.Errors), opts.Layout.Export),
	}
	return result, nil
}

// exportMessage phrases the summary line.
func exportMessage(total, failed int, dir string) string {
	if failed > 0 {
		return fmt.Sprintf("Exported %d of %d files; %d failed.", total-failed, total, failed)
	}
	if total == 1 {
		return fmt.Sprintf("Exported 1 file to %s.", dir)
	}
	return fmt.Sprintf("Exported %d files to %s.", total, dir)
}
