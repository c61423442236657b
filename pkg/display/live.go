package display

import (
	"fmt"
	"strings"

	"github.com/picoforge/picoforge/pkg/progress"
	"github.com/picoforge/picoforge/pkg/style"
	"github.com/pterm/pterm"
)

// LiveListener renders tracker events into a live terminal region. Each
// visible task gets one row; the first task ever added is treated as the
// running total and rendered as a progress bar instead of a plain row.
type LiveListener struct {
	title      string
	area       *pterm.AreaPrinter
	tasks      []progress.Task
	index      map[progress.TaskID]int
	overall    progress.TaskID
	hasOverall bool
}

// NewLiveListener creates a listener that renders under the given title
func NewLiveListener(title string) *LiveListener {
	return &LiveListener{
		title: title,
		index: make(map[progress.TaskID]int),
	}
}

// Start opens the live region
func (l *LiveListener) Start() error {
	printer := pterm.DefaultArea
	area, err := printer.Start(l.Render())
	if err != nil {
		return err
	}
	l.area = area
	return nil
}

// Stop redraws the final frame and closes the region, leaving the frame
// on screen
func (l *LiveListener) Stop() error {
	if l.area == nil {
		return nil
	}
	l.area.Update(l.Render())
	err := l.area.Stop()
	l.area = nil
	return err
}

// TaskAdded records a new task row
func (l *LiveListener) TaskAdded(t progress.Task) {
	if !l.hasOverall {
		l.overall = t.ID
		l.hasOverall = true
	}
	l.upsert(t)
	l.redraw()
}

// TaskUpdated refreshes the row for t
func (l *LiveListener) TaskUpdated(t progress.Task) {
	l.upsert(t)
	l.redraw()
}

// TaskStopped freezes the row for t in its final state
func (l *LiveListener) TaskStopped(t progress.Task) {
	l.upsert(t)
	l.redraw()
}

func (l *LiveListener) upsert(t progress.Task) {
	if i, ok := l.index[t.ID]; ok {
		l.tasks[i] = t
		return
	}
	l.index[t.ID] = len(l.tasks)
	l.tasks = append(l.tasks, t)
}

func (l *LiveListener) redraw() {
	if l.area == nil {
		return
	}
	l.area.Update(l.Render())
}

// Render returns the current frame
func (l *LiveListener) Render() string {
	var b strings.Builder

	if l.title != "" {
		b.WriteString(style.SubtitleStyle.Render(l.title) + "\n")
	}

	for _, t := range l.tasks {
		if !t.Visible {
			continue
		}
		if l.hasOverall && t.ID == l.overall {
			b.WriteString(renderBar(t) + "\n")
			continue
		}
		b.WriteString(renderRow(t) + "\n")
	}

	return b.String()
}

// taskStatus classifies a task for styling. Stopped tasks that never
// reached their total are failures; everything the commands layer stops
// cleanly is advanced to its total first. A task stopped at a total of
// zero had nothing to process and is not a failure.
func taskStatus(t progress.Task) style.Status {
	switch {
	case !t.Stopped:
		return style.StatusActive
	case t.Finished(), t.Total == 0:
		return style.StatusDone
	default:
		return style.StatusError
	}
}

func indicatorFor(status style.Status) string {
	switch status {
	case style.StatusDone:
		return style.SuccessIndicator
	case style.StatusError:
		return style.ErrorIndicator
	default:
		return style.ProgressIndicator
	}
}

func taskLabel(t progress.Task) string {
	if t.Item == "" {
		return t.Description
	}
	return t.Description + " " + t.Item
}

// renderRow renders a single-item task line
func renderRow(t progress.Task) string {
	status := taskStatus(t)
	return fmt.Sprintf("%s %s", indicatorFor(status), style.StatusStyle(status).Sprint(taskLabel(t)))
}

// renderBar renders the running-total task as a counting progress bar
func renderBar(t progress.Task) string {
	status := taskStatus(t)

	total := t.Total
	if total < 1 {
		total = 1
	}
	barWidth := 20
	filled := barWidth * t.Completed / total
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	return fmt.Sprintf("%s [%s] %d/%d %s",
		indicatorFor(status),
		style.StatusStyle(status).Sprint(bar),
		t.Completed,
		t.Total,
		taskLabel(t))
}
