package notify

import (
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner is a blocking progress indicator. Show and Hide may be called any
// number of times.
type Spinner struct {
	mu      sync.Mutex
	s       *spinner.Spinner
	visible bool
}

func NewSpinner(w io.Writer, message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	return &Spinner{s: s}
}

func (s *Spinner) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.visible {
		return
	}
	s.visible = true
	s.s.Start()
}

func (s *Spinner) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.visible {
		return
	}
	s.visible = false
	s.s.Stop()
}

func (s *Spinner) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// SetMessage replaces the text next to the spinner.
func (s *Spinner) SetMessage(msg string) {
	s.s.Lock()
	s.s.Suffix = " " + msg
	s.s.Unlock()
}
