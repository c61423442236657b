package display

import (
	"fmt"
	"io"

	"github.com/picoforge/picoforge/pkg/progress"
)

// PlainListener writes one line per finished task. Rows in flight are
// not printed, so piped output stays stable.
type PlainListener struct {
	writer io.Writer
}

// NewPlainListener creates a plain line listener writing to w
func NewPlainListener(w io.Writer) *PlainListener {
	return &PlainListener{
		writer: w,
	}
}

// Start is a no-op for plain output
func (l *PlainListener) Start() error { return nil }

// Stop is a no-op for plain output
func (l *PlainListener) Stop() error { return nil }

// TaskAdded ignores in-flight rows
func (l *PlainListener) TaskAdded(progress.Task) {}

// TaskUpdated ignores in-flight rows
func (l *PlainListener) TaskUpdated(progress.Task) {}

// TaskStopped prints the final state of the task
func (l *PlainListener) TaskStopped(t progress.Task) {
	_, _ = fmt.Fprintln(l.writer, taskLabel(t))
}
