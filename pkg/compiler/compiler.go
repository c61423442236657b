// Package compiler drives the external mpy-cross cross-compiler. Each run
// translates one .py source into a .mpy bytecode artifact written next to
// it. The compiler process is bounded by a timeout, and after a clean exit
// the artifact is confirmed on disk by a bounded poll.
package compiler

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/picoforge/picoforge/pkg/config"
	pferrors "github.com/picoforge/picoforge/pkg/errors"
	"github.com/picoforge/picoforge/pkg/logging"
	"github.com/picoforge/picoforge/pkg/project"
)

// Status describes where a compilation task ended up.
type Status string

const (
	// StatusRunning means the compiler process is still executing
	StatusRunning Status = "running"
	// StatusDone means the artifact was produced and confirmed on disk
	StatusDone Status = "done"
	// StatusError means the compiler rejected the source
	StatusError Status = "error"
	// StatusTimedOut means the process or the artifact wait ran out of time
	StatusTimedOut Status = "timed_out"
)

// Task records one source file's trip through the cross-compiler.
type Task struct {
	// Source is the .py file handed to the compiler
	Source string
	// Artifact is where the bytecode lands on success
	Artifact string
	// Status is the task's final state
	Status Status
	// Stderr holds the compiler's diagnostics when the source was rejected
	Stderr string
}

// Compiler runs mpy-cross with a fixed target architecture.
type Compiler struct {
	cfg config.Compiler
}

// New creates a Compiler. Zero fields in cfg fall back to the built-in
// defaults so a partially filled config stays usable.
func New(cfg config.Compiler) *Compiler {
	if cfg.Binary == "" {
		cfg.Binary = "mpy-cross"
	}
	if cfg.March == "" {
		cfg.March = "armv6m"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = 10
	}
	return &Compiler{cfg: cfg}
}

// NewDefault creates a Compiler from the loaded configuration.
func NewDefault() *Compiler {
	return New(config.GetCompiler())
}

// ArtifactPath returns the bytecode path the compiler emits for source:
// the same location with the artifact extension in place of the source's.
func ArtifactPath(source string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + project.ArtifactExt
}

// Compile cross-compiles one source file. The returned Task is always
// non-nil and records the outcome, including stderr when the compiler
// rejected the source. The process is killed once the configured timeout
// elapses; after a clean exit the artifact is polled into existence before
// the task counts as done.
func (c *Compiler) Compile(ctx context.Context, source string) (*Task, error) {
	logger := logging.GetLogger("compiler")

	task := &Task{
		Source:   source,
		Artifact: ArtifactPath(source),
		Status:   StatusRunning,
	}

	if _, err := os.Stat(source); err != nil {
		task.Status = StatusError
		if os.IsNotExist(err) {
			return task, pferrors.Newf(pferrors.ErrFileNotFound, "source file %s does not exist", source)
		}
		return task, pferrors.Wrapf(err, pferrors.ErrFileAccess, "cannot access source file %s", source)
	}

	runCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.cfg.Binary, "-march="+c.cfg.March, source)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug().
		Str("binary", c.cfg.Binary).
		Str("march", c.cfg.March).
		Str("source", source).
		Msg("Running cross-compiler")

	if err := cmd.Run(); err != nil {
		if runCtx.Err() != nil {
			// The process was killed because time ran out or the caller
			// gave up; either way the task never finished.
			task.Status = StatusTimedOut
			if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
				return task, pferrors.Newf(pferrors.ErrCompileTimeout,
					"compilation of %s timed out after %s", source, c.cfg.Timeout)
			}
			return task, pferrors.Wrapf(runCtx.Err(), pferrors.ErrCompileTimeout,
				"compilation of %s was interrupted", source)
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			task.Status = StatusError
			task.Stderr = strings.TrimSpace(stderr.String())
			return task, pferrors.Newf(pferrors.ErrCompile, "failed to compile %s", source).
				WithDetail("exit_code", exitErr.ExitCode()).
				WithDetail("stderr", task.Stderr)
		}

		var execErr *exec.Error
		if errors.As(err, &execErr) {
			task.Status = StatusError
			return task, pferrors.Wrapf(err, pferrors.ErrConfig,
				"compiler '%s' is not available", c.cfg.Binary)
		}

		task.Status = StatusError
		return task, pferrors.Wrapf(err, pferrors.ErrCompile, "failed to run compiler on %s", source)
	}

	return c.awaitArtifact(ctx, task)
}

// awaitArtifact polls for the task's artifact until it appears or the
// attempt budget is spent.
func (c *Compiler) awaitArtifact(ctx context.Context, task *Task) (*Task, error) {
	logger := logging.GetLogger("compiler")

	for attempt := 0; ; attempt++ {
		if info, err := os.Stat(task.Artifact); err == nil && info.Mode().IsRegular() {
			task.Status = StatusDone
			logger.Debug().
				Str("artifact", task.Artifact).
				Int("attempts", attempt).
				Msg("Artifact confirmed")
			return task, nil
		}

		if attempt >= c.cfg.PollAttempts {
			break
		}

		select {
		case <-ctx.Done():
			task.Status = StatusTimedOut
			return task, pferrors.Wrapf(ctx.Err(), pferrors.ErrCompileTimeout,
				"wait for %s was interrupted", task.Artifact)
		case <-time.After(c.cfg.PollInterval):
		}
	}

	task.Status = StatusTimedOut
	return task, pferrors.Newf(pferrors.ErrCompileTimeout,
		"compiled artifact %s never appeared", task.Artifact).
		WithDetail("attempts", c.cfg.PollAttempts).
		WithDetail("interval", c.cfg.PollInterval.String())
}
