// Package install implements the install command: provision packages from
// the remote index into the project's lib directory, one task per package.
package install

import (
	"context"
	"fmt"
	"os"

	"github.com/picoforge/picoforge/pkg/errors"
	"github.com/picoforge/picoforge/pkg/installer"
	"github.com/picoforge/picoforge/pkg/logging"
	"github.com/picoforge/picoforge/pkg/progress"
	"github.com/picoforge/picoforge/pkg/project"
)

// InstallOptions defines the options for the InstallPackages command.
type InstallOptions struct {
	// Packages are the package names to provision; at least one is required.
	Packages []string
	// Directory overrides the install destination (optional, defaults to
	// the project lib directory).
	Directory string
	// Layout supplies the default directory; required when Directory is
	// empty.
	Layout *project.Layout
	// Installer performs the provisioning; required.
	Installer *installer.Installer
	// Tracker receives progress events (optional).
	Tracker *progress.Tracker
}

// InstallResult reports the outcome of one install run.
type InstallResult struct {
	// Installed lists the packages that were fully provisioned.
	Installed []string
	// Directory is the resolved install destination.
	Directory string
	// Errors collects per-package failures.
	Errors []error
	// Message summarizes the run for plain output.
	Message string
}

// InstallPackages provisions each requested package in turn. A failed
// package is recorded and the run moves on. Only a missing install
// directory aborts before any package is attempted.
func InstallPackages(ctx context.Context, opts InstallOptions) (*InstallResult, error) {
	log := logging.GetLogger("commands.install")
	log.Debug().Str("command", "InstallPackages").Int("packages", len(opts.Packages)).Msg("Executing command")

	if len(opts.Packages) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "no packages requested")
	}
	if opts.Installer == nil {
		return nil, errors.New(errors.ErrInternal, "install requested without an installer")
	}

	dir := opts.Directory
	if dir == "" {
		if opts.Layout == nil {
			return nil, errors.New(errors.ErrInvalidInput,
				"no install directory given and no project layout to derive it from")
		}
		dir = opts.Layout.Lib
	}

	// The destination has to exist up front so every package sees the same
	// target; nothing is attempted otherwise
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.ErrConfig, "target directory %s is missing", dir)
	}

	tracker := opts.Tracker
	if tracker == nil {
		tracker = progress.NewTracker()
	}

	overall := tracker.AddTask("Installing", "", len(opts.Packages))

	result := &InstallResult{Directory: dir}
	for _, pkg := range opts.Packages {
		id := tracker.AddTask("Installing", pkg, 1)

		if err := opts.Installer.Install(ctx, pkg, dir); err != nil {
			log.Warn().Err(err).Str("package", pkg).Msg("Installation failed")
			result.Errors = append(result.Errors, err)
			tracker.UpdateTask(id, progress.Update{Description: "Error"})
		} else {
			result.Installed = append(result.Installed, pkg)
			tracker.UpdateTask(id, progress.Update{Description: "Installed", Advance: 1})
		}
		tracker.StopTask(id)
		tracker.UpdateTask(overall, progress.Update{Advance: 1})
	}

	tracker.UpdateTask(overall, progress.Update{Description: "Installed"})
	tracker.StopTask(overall)
	tracker.HideFinished()

	result.Message = installMessage(len(opts.Packages), len(result.Errors), dir)
	return result, nil
}

// installMessage phrases the summary line.
func installMessage(total, failed int, dir string) string {
	if failed > 0 {
		return fmt.Sprintf("Installed %d of %d packages; %d failed.", total-failed, total, failed)
	}
	if total == 1 {
		return fmt.Sprintf("Installed 1 package into %s.", dir)
	}
	return fmt.Sprintf("Installed %d packages into %s.", total, dir)
}
