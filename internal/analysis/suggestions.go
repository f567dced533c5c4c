package analysis

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/pablasso/specflow/internal/tasks"
	"github.com/pablasso/specflow/internal/workspace"
)

// Suggestion represents a suggested improvement to how a feature's tasks
// are written or tracked.
type Suggestion struct {
	Category    string // e.g., "Planning", "Tracking", "Common Issues"
	Title       string
	Description string
}

// TaskStats summarizes the recorded history of one checklist item.
type TaskStats struct {
	Index       int
	Text        string
	Completed   bool
	Starts      int
	StartedAt   time.Time // first start, zero if never started
	CompletedAt time.Time // zero if no completion was recorded
	External    bool      // completion came from an edit rather than a complete request
}

// Duration is the time from the first start to the recorded completion.
func (s TaskStats) Duration() time.Duration {
	if s.StartedAt.IsZero() || s.CompletedAt.IsZero() || s.CompletedAt.Before(s.StartedAt) {
		return 0
	}
	return s.CompletedAt.Sub(s.StartedAt)
}

// Analyzer generates suggestions from a feature's progress history.
type Analyzer struct {
	items  []tasks.Item
	events []workspace.ProgressEvent
}

// NewAnalyzer creates a new analyzer for the given checklist and history.
func NewAnalyzer(items []tasks.Item, events []workspace.ProgressEvent) *Analyzer {
	return &Analyzer{items: items, events: events}
}

// Stats returns per-task history in checklist order. Events are matched to
// items by task text, falling back to the index when the text is missing.
func (a *Analyzer) Stats() []TaskStats {
	stats := make([]TaskStats, len(a.items))
	byText := make(map[string]int, len(a.items))
	for i, item := range a.items {
		stats[i] = TaskStats{Index: item.Index, Text: item.Text, Completed: item.Completed}
		if _, dup := byText[item.Text]; !dup {
			byText[item.Text] = i
		}
	}

	for _, ev := range a.events {
		i, ok := a.locate(ev.Data, byText)
		if !ok {
			continue
		}
		s := &stats[i]
		switch ev.Event {
		case workspace.EventTaskStarted:
			s.Starts++
			if s.StartedAt.IsZero() {
				s.StartedAt = ev.Timestamp
			}
		case workspace.EventTaskCompleted:
			s.CompletedAt = ev.Timestamp
			s.External = false
		case workspace.EventTaskAutoCompleted:
			s.CompletedAt = ev.Timestamp
			s.External = true
		}
	}
	return stats
}

func (a *Analyzer) locate(data map[string]any, byText map[string]int) (int, bool) {
	if title, ok := data["title"].(string); ok {
		i, found := byText[title]
		return i, found
	}
	index, ok := data["task"].(float64) // JSON numbers decode as float64
	if !ok || int(index) < 0 || int(index) >= len(a.items) {
		return 0, false
	}
	return int(index), true
}

// Analyze examines the history and generates suggestions.
func (a *Analyzer) Analyze() []Suggestion {
	stats := a.Stats()

	var suggestions []Suggestion
	suggestions = append(suggestions, analyzeRestarts(stats)...)
	suggestions = append(suggestions, analyzeDurations(stats)...)
	suggestions = append(suggestions, analyzeUntracked(stats)...)

	return deduplicate(suggestions)
}

// analyzeRestarts looks for tasks that were started more than once.
func analyzeRestarts(stats []TaskStats) []Suggestion {
	var suggestions []Suggestion
	for _, s := range stats {
		if s.Starts > 1 {
			suggestions = append(suggestions, Suggestion{
				Category:    "Common Issues",
				Title:       fmt.Sprintf("Task '%s' was started %d times", s.Text, s.Starts),
				Description: "Consider adding more specific acceptance criteria or breaking this task into smaller pieces.",
			})
		}
	}
	return suggestions
}

// analyzeDurations flags completed tasks that took far longer than the median.
func analyzeDurations(stats []TaskStats) []Suggestion {
	var durations []time.Duration
	for _, s := range stats {
		if d := s.Duration(); d > 0 {
			durations = append(durations, d)
		}
	}
	if len(durations) < 3 {
		return nil
	}

	sorted := slices.Clone(durations)
	slices.Sort(sorted)
	median := sorted[len(sorted)/2]

	var suggestions []Suggestion
	for _, s := range stats {
		if d := s.Duration(); d > 0 && d > 2*median {
			suggestions = append(suggestions, Suggestion{
				Category:    "Planning",
				Title:       fmt.Sprintf("Task '%s' took %s", s.Text, d.Round(time.Minute)),
				Description: fmt.Sprintf("That is more than twice the median of %s. Similar work may be easier to track as several tasks.", median.Round(time.Minute)),
			})
		}
	}
	return suggestions
}

// analyzeUntracked counts tasks checked off without ever being started.
func analyzeUntracked(stats []TaskStats) []Suggestion {
	untracked := 0
	for _, s := range stats {
		if s.Completed && s.Starts == 0 {
			untracked++
		}
	}
	if untracked == 0 {
		return nil
	}

	noun := "tasks were"
	if untracked == 1 {
		noun = "task was"
	}
	return []Suggestion{{
		Category:    "Tracking",
		Title:       fmt.Sprintf("%d %s checked off without being started", untracked, noun),
		Description: "Start tasks from the TUI or with 'specflow watch --start N' so their duration is recorded.",
	}}
}

// deduplicate removes similar suggestions.
func deduplicate(suggestions []Suggestion) []Suggestion {
	seen := make(map[string]bool)
	var result []Suggestion

	for _, s := range suggestions {
		key := s.Category + ":" + s.Title
		if !seen[key] {
			seen[key] = true
			result = append(result, s)
		}
	}

	return result
}

// FormatSuggestions formats suggestions for display, grouped by category.
func FormatSuggestions(suggestions []Suggestion) string {
	if len(suggestions) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Suggestions:\n\n")

	byCategory := make(map[string][]Suggestion)
	for _, s := range suggestions {
		byCategory[s.Category] = append(byCategory[s.Category], s)
	}

	// Sort categories for consistent output
	var categories []string
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	for _, cat := range categories {
		sb.WriteString(fmt.Sprintf("## %s\n\n", cat))
		for _, s := range byCategory[cat] {
			sb.WriteString(fmt.Sprintf("- %s\n", s.Title))
			sb.WriteString(fmt.Sprintf("  %s\n\n", s.Description))
		}
	}

	return sb.String()
}
