// Package progress tracks long-running task state for display and testing.
// A Tracker is an explicit handle threaded through operations; there is no
// package-level singleton. All methods are called from a single goroutine.
package progress

// TaskID identifies a task within one Tracker
type TaskID int

// Task is the observable record of one tracked task
type Task struct {
	ID          TaskID
	Description string
	// Item labels the object being worked on, such as a file or package name
	Item      string
	Completed int
	Total     int
	Visible   bool
	Stopped   bool
}

// Finished reports whether the task reached its total
func (t Task) Finished() bool {
	return t.Total > 0 && t.Completed >= t.Total
}

// Update describes a change to a task. Zero-value fields leave the
// corresponding task field untouched; Hide only ever hides.
type Update struct {
	Description string
	Item        string
	Advance     int
	Hide        bool
}

// Listener receives task lifecycle events
type Listener interface {
	TaskAdded(Task)
	TaskUpdated(Task)
	TaskStopped(Task)
}

// Tracker owns the task records for one command invocation
type Tracker struct {
	tasks     []Task
	index     map[TaskID]int
	next      TaskID
	listeners []Listener
}

// NewTracker returns an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		index: make(map[TaskID]int),
	}
}

// Subscribe registers a listener for lifecycle events
func (tr *Tracker) Subscribe(l Listener) {
	tr.listeners = append(tr.listeners, l)
}

// AddTask registers a new visible task and returns its id
func (tr *Tracker) AddTask(description, item string, total int) TaskID {
	id := tr.next
	tr.next++

	task := Task{
		ID:          id,
		Description: description,
		Item:        item,
		Total:       total,
		Visible:     true,
	}
	tr.index[id] = len(tr.tasks)
	tr.tasks = append(tr.tasks, task)

	for _, l := range tr.listeners {
		l.TaskAdded(task)
	}
	return id
}

// UpdateTask applies an update to a task. Unknown ids are ignored.
func (tr *Tracker) UpdateTask(id TaskID, u Update) {
	i, ok := tr.index[id]
	if !ok {
		return
	}

	task := &tr.tasks[i]
	if u.Description != "" {
		task.Description = u.Description
	}
	if u.Item != "" {
		task.Item = u.Item
	}
	if u.Advance > 0 {
		task.Completed += u.Advance
	}
	if u.Hide {
		task.Visible = false
	}

	for _, l := range tr.listeners {
		l.TaskUpdated(*task)
	}
}

// StopTask marks a task as no longer running. Its record stays available.
func (tr *Tracker) StopTask(id TaskID) {
	i, ok := tr.index[id]
	if !ok {
		return
	}

	task := &tr.tasks[i]
	if task.Stopped {
		return
	}
	task.Stopped = true

	for _, l := range tr.listeners {
		l.TaskStopped(*task)
	}
}

// HideFinished hides every task that reached its total
func (tr *Tracker) HideFinished() {
	for i := range tr.tasks {
		if tr.tasks[i].Finished() && tr.tasks[i].Visible {
			tr.tasks[i].Visible = false
			for _, l := range tr.listeners {
				l.TaskUpdated(tr.tasks[i])
			}
		}
	}
}

// Task returns a copy of the record for id
func (tr *Tracker) Task(id TaskID) (Task, bool) {
	i, ok := tr.index[id]
	if !ok {
		return Task{}, false
	}
	return tr.tasks[i], true
}

// Tasks returns a copy of all records in creation order
func (tr *Tracker) Tasks() []Task {
	out := make([]Task, len(tr.tasks))
	copy(out, tr.tasks)
	return out
}

// Visible returns copies of the records still visible, in creation order
func (tr *Tracker) Visible() []Task {
	var out []Task
	for _, t := range tr.tasks {
		if t.Visible {
			out = append(out, t)
		}
	}
	return out
}
