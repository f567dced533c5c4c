package components

import (
	"fmt"
	"strings"

	"github.com/pablasso/specflow/internal/tasks"
)

const (
	filledChar = "■"
	emptyChar  = "□"
)

// Progress renders a progress bar like: ■■■■□□□□ 50%
type Progress struct {
	Current int
	Total   int
	Width   int // character width of the bar portion
}

// NewProgress creates a new Progress instance.
func NewProgress(current, total, width int) Progress {
	return Progress{
		Current: current,
		Total:   total,
		Width:   width,
	}
}

// ProgressFor builds a bar from a progress snapshot.
func ProgressFor(s tasks.Snapshot, width int) Progress {
	return NewProgress(s.CompletedTasks, s.TotalTasks, width)
}

// View returns the rendered progress bar string. The percentage uses the
// same rounding as the progress summary text.
func (p Progress) View() string {
	if p.Total <= 0 || p.Width <= 0 {
		return ""
	}

	current := max(0, min(p.Current, p.Total))
	filled := (current * p.Width) / p.Total

	bar := strings.Repeat(filledChar, filled) + strings.Repeat(emptyChar, p.Width-filled)

	return fmt.Sprintf("%s %d%%", bar, tasks.Percent(current, p.Total))
}
