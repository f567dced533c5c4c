package components

import (
	"strings"
	"testing"
)

func TestStatusBar_Render_SingleItem(t *testing.T) {
	sb := NewStatusBar()
	result := sb.Render(50, []string{"q Quit"})

	if !strings.Contains(result, "q Quit") {
		t.Errorf("expected result to contain 'q Quit', got: %s", result)
	}
}

func TestStatusBar_Render_MultipleItems(t *testing.T) {
	sb := NewStatusBar()
	items := []string{"↑↓ Navigate", "Enter Start", "q Quit"}
	result := sb.Render(60, items)

	for _, item := range items {
		if !strings.Contains(result, item) {
			t.Errorf("expected result to contain %q, got: %s", item, result)
		}
	}
	if !strings.Contains(result, "|") {
		t.Errorf("expected result to contain '|' separator, got: %s", result)
	}
}

func TestStatusBar_Render_EmptyItems(t *testing.T) {
	sb := NewStatusBar()

	// Should not panic; styling may still pad the line
	_ = sb.Render(50, []string{})
}

func TestStatusBar_Render_NarrowWidth(t *testing.T) {
	sb := NewStatusBar()
	items := []string{"↑↓ Navigate", "Enter Start", "q Quit"}
	result := sb.Render(20, items)

	if result == "" {
		t.Error("expected non-empty result even with narrow width")
	}
}

func TestStatusBar_Render_SeparatorFormat(t *testing.T) {
	sb := NewStatusBar()
	result := sb.Render(40, []string{"A", "B", "C"})

	if !strings.Contains(result, "A  |  B  |  C") {
		t.Errorf("expected items to be joined with '  |  ', got: %s", result)
	}
}

func TestStatusBar_RenderWithInfo(t *testing.T) {
	sb := NewStatusBar()

	tests := []struct {
		name     string
		items    []string
		info     string
		expected string
	}{
		{"items and info", []string{"q Quit"}, "1/2 tasks (50%)", "q Quit  |  1/2 tasks (50%)"},
		{"info only", nil, "No tasks - ready", "No tasks - ready"},
		{"items only", []string{"q Quit"}, "", "q Quit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sb.RenderWithInfo(80, tt.items, tt.info)
			if !strings.Contains(result, tt.expected) {
				t.Errorf("expected %q in %q", tt.expected, result)
			}
		})
	}
}
