package components

import (
	"strings"

	"github.com/pablasso/specflow/internal/tui/styles"
)

const statusSeparator = "  |  "

// StatusBar renders a bottom help bar showing contextual help items.
type StatusBar struct{}

// NewStatusBar creates a new StatusBar instance.
func NewStatusBar() StatusBar {
	return StatusBar{}
}

// Render returns the status bar string for the given width and items.
func (s StatusBar) Render(width int, items []string) string {
	return styles.StatusBarStyle.Width(width).Render(strings.Join(items, statusSeparator))
}

// RenderWithInfo renders items on the left and info (for example the
// presented progress) after them.
func (s StatusBar) RenderWithInfo(width int, items []string, info string) string {
	content := strings.Join(items, statusSeparator)
	if info != "" {
		if content != "" {
			content += statusSeparator
		}
		content += info
	}
	return styles.StatusBarStyle.Width(width).Render(content)
}
