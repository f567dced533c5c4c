package tasks

import (
	"regexp"
	"strings"
)

// checklistPattern matches "- [ ] text" and "- [x] text" with optional indent.
// Only a lowercase x counts as complete; "[X]" is not a checklist entry.
var checklistPattern = regexp.MustCompile(`^(\s*-\s+\[)([x ])(\]\s+)(.+)$`)

// Parse extracts checklist items from document text in line order.
// Lines that do not match the checklist shape are ignored.
func Parse(text string) []Item {
	if text == "" {
		return nil
	}

	var items []Item
	for lineNum, line := range splitLines(text) {
		m := checklistPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		desc := strings.TrimSpace(m[4])
		if desc == "" {
			continue
		}
		items = append(items, Item{
			Index:     len(items),
			Text:      desc,
			Completed: m[2] == "x",
			Line:      lineNum,
		})
	}
	return items
}

// splitLines splits on \n and drops a trailing \r from each line.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// CountCompleted returns the number of completed items.
func CountCompleted(items []Item) int {
	n := 0
	for _, it := range items {
		if it.Completed {
			n++
		}
	}
	return n
}
