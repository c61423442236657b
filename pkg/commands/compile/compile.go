// Package compile implements the compile command: cross-compile project
// sources to bytecode, one task per target, without letting a failed
// target abort its siblings.
package compile

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/picoforge/picoforge/pkg/compiler"
	"github.com/picoforge/picoforge/pkg/errors"
	"github.com/picoforge/picoforge/pkg/logging"
	"github.com/picoforge/picoforge/pkg/progress"
	"github.com/picoforge/picoforge/pkg/project"
)

// CompileOptions defines the options for the CompileTargets command.
type CompileOptions struct {
	// Targets are the source files to compile. Empty means every project
	// source: package-level modules plus everything under lib.
	Targets []string
	// Layout is the resolved project layout; required when Targets is empty.
	Layout *project.Layout
	// Compiler runs the cross-compiler (optional, defaults to the
	// configured compiler).
	Compiler *compiler.Compiler
	// Tracker receives progress events (optional).
	Tracker *progress.Tracker
}

// CompileResult reports the outcome of one compile run.
type CompileResult struct {
	// Tasks records one entry per target, in target order.
	Tasks []*compiler.Task
	// Errors collects per-target failures.
	Errors []error
	// Message summarizes the run for plain output.
	Message string
}

// CompileTargets cross-compiles each target in turn. A missing, rejected,
// or timed out target is recorded and the run moves on; only a failed
// source enumeration aborts the whole command.
func CompileTargets(ctx context.Context, opts CompileOptions) (*CompileResult, error) {
	log := logging.GetLogger("commands.compile")
	log.Debug().Str("command", "CompileTargets").Int("targets", len(opts.Targets)).Msg("Executing command")

	comp := opts.Compiler
	if comp == nil {
		comp = compiler.NewDefault()
	}
	tracker := opts.Tracker
	if tracker == nil {
		tracker = progress.NewTracker()
	}

	targets := opts.Targets
	if len(targets) == 0 {
		if opts.Layout == nil {
			return nil, errors.New(errors.ErrInvalidInput,
				"no targets given and no project layout to derive them from")
		}
		var err error
		targets, err = opts.Layout.Sources()
		if err != nil {
			return nil, err
		}
	}

	overall := tracker.AddTask("Compiling", projectLabel(opts.Layout), len(targets))

	result := &CompileResult{}
	for _, target := range targets {
		id := tracker.AddTask("Compiling", displayName(opts.Layout, target), 1)

		task, err := comp.Compile(ctx, target)
		result.Tasks = append(result.Tasks, task)
		if err != nil {
			log.Warn().Err(err).Str("target", target).Msg("Compilation failed")
			result.Errors = append(result.Errors, err)
			tracker.UpdateTask(id, progress.Update{Description: "Error"})
		} else {
			tracker.UpdateTask(id, progress.Update{Description: "Compiled", Advance: 1})
		}
		tracker.StopTask(id)
		tracker.UpdateTask(overall, progress.Update{Advance: 1})
	}

	tracker.UpdateTask(overall, progress.Update{Description: "Compiled"})
	tracker.StopTask(overall)
	tracker.HideFinished()

	result.Message = compileMessage(len(targets), len(result.Errors))
	return result, nil
}

// compileMessage phrases the summary line.
func compileMessage(total, failed int) string {
	if failed > 0 {
		return fmt.Sprintf("Compiled %d of %d files; %d failed.", total-failed, total, failed)
	}
	if total == 1 {
		return "Compiled 1 file."
	}
	return fmt.Sprintf("Compiled %d files.", total)
}

// projectLabel names the overall task after the project when one is known.
func projectLabel(layout *project.Layout) string {
	if layout == nil {
		return ""
	}
	return layout.Name
}

// displayName shortens a target for task labels: relative to the project
// root when the target lives under it, the given path otherwise.
func displayName(layout *project.Layout, target string) string {
	if layout == nil {
		return target
	}
	rel, err := filepath.Rel(layout.Root, target)
	if err != nil || strings.HasPrefix(rel, "..") {
		return target
	}
	return rel
}
