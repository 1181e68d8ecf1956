// Package notify provides the terminal notifier and progress indicator used by
// the CLI widgets.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// DismissAfter is how long a notification stays current.
const DismissAfter = 3 * time.Second

var toastStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("229")).
	Background(lipgloss.Color("57")).
	Padding(0, 1)

// Console prints notifications to a writer. The latest message is reported by
// Current until it is dismissed or replaced.
type Console struct {
	w       io.Writer
	dismiss time.Duration

	mu      sync.Mutex
	current string
	seq     uint64
	timer   *time.Timer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w, dismiss: DismissAfter}
}

// WithDismiss overrides the dismissal delay.
func (c *Console) WithDismiss(d time.Duration) *Console {
	c.dismiss = d
	return c
}

func (c *Console) Notify(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}
	c.seq++
	seq := c.seq
	c.current = msg
	c.timer = time.AfterFunc(c.dismiss, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.seq == seq {
			c.current = ""
		}
	})

	fmt.Fprintln(c.w, toastStyle.Render(msg))
}

// Current returns the message on display, or "" once dismissed.
func (c *Console) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Console) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.current = ""
}
