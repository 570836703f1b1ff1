// Package progress provides CLI progress indicators for long imports and
// reloads. Output goes to stderr to keep stdout clean for piping, and is
// only drawn when that stream is a terminal.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// minItems is the minimum number of items before showing progress.
const minItems = 5

// blank clears a progress line.
const blank = "\r                                        \r"

// Progress counts completed items. Safe for concurrent use.
type Progress struct {
	w     io.Writer
	label string
	total int
	tty   bool

	mu      sync.Mutex
	current int
}

// New creates a progress reporter on stderr.
func New(label string, total int) *Progress {
	return NewWriter(os.Stderr, label, total)
}

// NewWriter creates a progress reporter on w. Drawing is enabled only when
// w is a terminal.
func NewWriter(w io.Writer, label string, total int) *Progress {
	return &Progress{w: w, label: label, total: total, tty: isTerminal(w)}
}

// Increment advances the counter by one and redraws.
func (p *Progress) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	p.draw()
}

// Current returns the number of completed items.
func (p *Progress) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Done clears the progress line to make way for final output.
func (p *Progress) Done() {
	if p.tty && p.total >= minItems {
		fmt.Fprint(p.w, blank)
	}
}

func (p *Progress) draw() {
	if !p.tty || p.total < minItems {
		return
	}
	pct := (p.current * 100) / p.total
	fmt.Fprintf(p.w, "\r%s... %d/%d (%d%%)", p.label, p.current, p.total, pct)
}

// Spinner animates while an indeterminate operation such as a full reload
// runs.
type Spinner struct {
	w     io.Writer
	label string
	tty   bool

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a spinner on stderr.
func NewSpinner(label string) *Spinner {
	return &Spinner{w: os.Stderr, label: label, tty: isTerminal(os.Stderr)}
}

// Start begins animating. Calling Start on a running spinner does nothing.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.tty || s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
}

func (s *Spinner) run(stop, done chan struct{}) {
	defer close(done)
	t := time.NewTicker(100 * time.Millisecond)
	defer t.Stop()
	for i := 0; ; i++ {
		fmt.Fprintf(s.w, "\r%s %s...", frames[i%len(frames)], s.label)
		select {
		case <-stop:
			fmt.Fprint(s.w, blank)
			return
		case <-t.C:
		}
	}
}

// Stop clears the spinner line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
