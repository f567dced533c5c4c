package display

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pablasso/specflow/internal/tasks"
)

// State holds the current display state.
type State struct {
	Feature      string
	Presentation tasks.Presentation
	TaskTitle    string    // title of the active task, if any
	TaskStarted  time.Time // when the active task was started
}

// Display manages the terminal status line for a watch session.
type Display struct {
	mu       sync.Mutex
	writer   io.Writer
	state    State
	ticker   *time.Ticker
	done     chan struct{}
	wg       sync.WaitGroup // Ensures goroutine exits before Stop() returns
	active   bool
	lastLine string
	now      func() time.Time
}

// New creates a new Display writing to the given writer.
func New(w io.Writer) *Display {
	return &Display{
		writer: w,
		done:   make(chan struct{}),
		now:    time.Now,
	}
}

// Start begins the display update loop.
func (d *Display) Start() {
	d.mu.Lock()
	if d.active {
		d.mu.Unlock()
		return
	}
	d.active = true
	d.ticker = time.NewTicker(time.Second)
	d.wg.Add(1)
	d.mu.Unlock()

	go d.updateLoop()
}

// Stop halts the display update loop and clears the status line.
// Blocks until the update goroutine has exited.
func (d *Display) Stop() {
	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return
	}
	d.active = false
	d.mu.Unlock()

	d.ticker.Stop()
	close(d.done)
	d.wg.Wait()
	d.clearLine()
}

// Update replaces the displayed progress. The task timer restarts whenever
// the active task title changes.
func (d *Display) Update(feature string, p tasks.Presentation, taskTitle string) {
	d.mu.Lock()
	if taskTitle != d.state.TaskTitle || !p.IsActive {
		d.state.TaskStarted = d.now()
	}
	d.state.Feature = feature
	d.state.Presentation = p
	d.state.TaskTitle = taskTitle
	d.mu.Unlock()

	d.render()
}

// updateLoop periodically renders the status line.
func (d *Display) updateLoop() {
	defer d.wg.Done()
	d.render()
	for {
		select {
		case <-d.ticker.C:
			d.render()
		case <-d.done:
			return
		}
	}
}

// render draws the current status line.
func (d *Display) render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	line := formatLine(d.state, d.now().Sub(d.state.TaskStarted))

	// Only update if changed (reduces flicker)
	if line == d.lastLine {
		return
	}
	d.lastLine = line

	fmt.Fprintf(d.writer, "\r\033[K%s", line)
}

// formatLine creates the status line string.
func formatLine(state State, elapsed time.Duration) string {
	if state.Feature == "" {
		return ""
	}

	line := fmt.Sprintf("%s │ %s", state.Feature, state.Presentation.SummaryText)
	if !state.Presentation.IsActive {
		return line
	}

	// Truncate title if too long
	title := []rune(state.TaskTitle)
	if len(title) > 40 {
		title = append(title[:37], []rune("...")...)
	}

	return fmt.Sprintf("%s │ %s │ ⏱ %s", line, string(title), formatDuration(elapsed))
}

// clearLine clears the status line.
func (d *Display) clearLine() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastLine = ""
	fmt.Fprintf(d.writer, "\r\033[K")
}

// PrintAbove prints a message above the status line.
func (d *Display) PrintAbove(format string, args ...any) {
	d.clearLine()
	d.mu.Lock()
	fmt.Fprintf(d.writer, format+"\n", args...)
	d.mu.Unlock()
	d.render()
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
