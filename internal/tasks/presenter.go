package tasks

import "fmt"

// Presentation is the display-ready form of a Snapshot.
type Presentation struct {
	SummaryText string
	IsActive    bool
	Percent     int
}

// Present formats a snapshot for any status display.
func Present(s Snapshot) Presentation {
	if s.TotalTasks == 0 {
		return Presentation{SummaryText: "No tasks - ready"}
	}

	pct := Percent(s.CompletedTasks, s.TotalTasks)
	active := s.CurrentTaskIndex != nil && s.CompletedTasks < s.TotalTasks

	summary := fmt.Sprintf("%d/%d tasks (%d%%)", s.CompletedTasks, s.TotalTasks, pct)
	if active {
		summary += fmt.Sprintf(" - implementing task %d", *s.CurrentTaskIndex+1)
	}

	return Presentation{
		SummaryText: summary,
		IsActive:    active,
		Percent:     pct,
	}
}

// Percent returns round-half-up of 100*done/total. Returns 0 when total is 0.
func Percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*done + total) / (2 * total)
}
