// Package display renders progress tracker events and directory tree
// snapshots for the terminal. The live renderer redraws a single region
// as tasks change; the plain renderer emits one line per finished task
// for piped or unstyled output.
package display

import (
	"io"

	"github.com/picoforge/picoforge/pkg/progress"
	"github.com/picoforge/picoforge/pkg/ui"
)

// Listener renders tracker events and owns a start/stop lifecycle
// around a command run.
type Listener interface {
	progress.Listener

	// Start begins rendering. Events received before Start are kept
	// and appear on the first frame.
	Start() error

	// Stop freezes the final frame. Stop is safe to call twice.
	Stop() error
}

// ListenerFor returns the listener for a resolved output format. The
// terminal format gets the live region; everything else gets plain
// line output on w.
func ListenerFor(format ui.Format, title string, w io.Writer) Listener {
	if format == ui.FormatTerminal {
		return NewLiveListener(title)
	}
	return NewPlainListener(w)
}
