package tasks

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned when a task index has no matching checklist line.
var ErrIndexOutOfRange = errors.New("task index out of range")

// SetMarker rewrites the completion flag of a checklist line, leaving every
// other character untouched. Lines that are not checklist entries are
// returned unchanged with ok=false.
func SetMarker(line string, completed bool) (string, bool) {
	crlf := len(line) > 0 && line[len(line)-1] == '\r'
	body := line
	if crlf {
		body = line[:len(line)-1]
	}

	loc := checklistPattern.FindStringSubmatchIndex(body)
	if loc == nil {
		return line, false
	}

	marker := " "
	if completed {
		marker = "x"
	}
	// loc[4]:loc[5] spans the single character inside the brackets
	return body[:loc[4]] + marker + body[loc[5]:] + line[len(body):], true
}

// CompleteLine locates the index-th checklist entry in text and returns its
// line number together with the rewritten line.
func CompleteLine(text string, index int) (int, string, error) {
	items := Parse(text)
	if index < 0 || index >= len(items) {
		return 0, "", fmt.Errorf("%w: %d (have %d tasks)", ErrIndexOutOfRange, index, len(items))
	}

	lineNum := items[index].Line
	line := splitLines(text)[lineNum]
	newLine, _ := SetMarker(line, true)
	return lineNum, newLine, nil
}
