package tasks

// Snapshot is a point-in-time view of a feature's task progress.
// A nil CurrentTaskIndex means no task of this feature is active.
type Snapshot struct {
	Feature          string `json:"feature"`
	TotalTasks       int    `json:"totalTasks"`
	CompletedTasks   int    `json:"completedTasks"`
	CurrentTaskIndex *int   `json:"currentTaskIndex"`
}

// ComputeProgress derives a snapshot from parsed items and the active task.
// It never mutates active; callers pass state that has already been reconciled.
func ComputeProgress(items []Item, feature string, active *ActiveTask) Snapshot {
	s := Snapshot{
		Feature:        feature,
		TotalTasks:     len(items),
		CompletedTasks: CountCompleted(items),
	}
	if active != nil && active.Feature == feature {
		idx := active.TaskIndex
		s.CurrentTaskIndex = &idx
	}
	return s
}

// Remaining returns the number of tasks not yet completed.
func (s Snapshot) Remaining() int {
	return s.TotalTasks - s.CompletedTasks
}
