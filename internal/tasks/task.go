package tasks

// Item represents a single checklist entry parsed from a tasks document.
type Item struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Line      int    `json:"line"`
}

// Status of the active task. Only StatusImplementing is ever held in memory;
// completing a task clears the active state instead of storing StatusCompleted.
type Status string

// Task status constants
const (
	StatusPending      Status = "pending"
	StatusImplementing Status = "implementing"
	StatusCompleted    Status = "completed"
)

// ActiveTask identifies the task currently being implemented.
type ActiveTask struct {
	Feature   string `json:"feature"`
	TaskIndex int    `json:"taskIndex"`
	Status    Status `json:"status"`
}
